// Package sl содержит вспомогательные функции для работы с логгером slog.
// Пакет упрощает формирование структурированных полей лога,
// например, для передачи информации об ошибках.
package sl

import (
	"log/slog"
	"strings"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Email возвращает атрибут с адресом, в котором скрыта локальная часть.
// В логи не должен попадать полный адрес пользователя.
func Email(email string) slog.Attr {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return slog.String("email", "***")
	}
	return slog.String("email", email[:1]+"***"+email[at:])
}
