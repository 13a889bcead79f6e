package sales

import "errors"

var (
	ErrSaleNotFound             = errors.New("venda não encontrada")
	ErrTerminalSale             = errors.New("venda cancelada ou devolvida não pode ser alterada")
	ErrInvalidCheckpointType    = errors.New("checkpoint_type inválido")
	ErrClosingNotFound          = errors.New("fechamento não encontrado")
	ErrInvalidClosingTransition = errors.New("transição de fechamento inválida")
	ErrEmptyClosing             = errors.New("fechamento sem vendas")
)
