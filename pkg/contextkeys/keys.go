package contextkeys

type contextKey string

const (
	// Текущая транзакция хранилища (pgx.Tx или маркер in-memory транзакции)
	TxKey contextKey = "Tx"
	// Идентификатор HTTP-запроса для логов
	RequestIDKey contextKey = "RequestID"
)
