package sales

import "backoffice/models"

// checkpointStatus é o status aplicado ao completar cada checkpoint.
// printed não altera o status.
var checkpointStatus = map[string]string{
	models.CHECKPOINT_PENDING_EXPEDITION: models.SALE_STATUS_PENDING_EXPEDITION,
	models.CHECKPOINT_DISPATCHED:         models.SALE_STATUS_DISPATCHED,
	models.CHECKPOINT_DELIVERED:          models.SALE_STATUS_DELIVERED,
	models.CHECKPOINT_PAYMENT_CONFIRMED:  models.SALE_STATUS_PAYMENT_CONFIRMED,
}

// reconcileLadder is checked top-down. printed and payment_confirmed are
// not part of it.
var reconcileLadder = []string{
	models.CHECKPOINT_DELIVERED,
	models.CHECKPOINT_DISPATCHED,
	models.CHECKPOINT_PENDING_EXPEDITION,
}

func completedSet(rows []models.SaleCheckpoint) map[string]bool {
	done := map[string]bool{}
	for _, r := range rows {
		if r.Completed() {
			done[r.CheckpointType] = true
		}
	}
	return done
}

// statusAfterUncomplete anda para trás na ordem canônica até o checkpoint
// completo mais alto que tenha status associado.
func statusAfterUncomplete(checkpointType string, done map[string]bool) string {
	if checkpointType == models.CHECKPOINT_PENDING_EXPEDITION {
		return models.SALE_STATUS_DRAFT
	}
	for i := len(models.CheckpointOrder) - 1; i >= 0; i-- {
		t := models.CheckpointOrder[i]
		if status, ok := checkpointStatus[t]; ok && done[t] {
			return status
		}
	}
	return models.SALE_STATUS_DRAFT
}

// DeriveStatus is the reconciliation ladder. Terminal statuses are kept.
func DeriveStatus(current string, done map[string]bool) string {
	if current == models.SALE_STATUS_CANCELLED || current == models.SALE_STATUS_RETURNED {
		return current
	}
	for _, t := range reconcileLadder {
		if done[t] {
			return checkpointStatus[t]
		}
	}
	return models.SALE_STATUS_DRAFT
}
