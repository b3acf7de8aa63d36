// redact маскирует чувствительные значения перед записью в лог.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Email оставляет два первых символа локальной части и домен:
// "owner@blastify.id" -> "ow***@blastify.id". Строка без ровно одного '@'
// превращается в "***", короткая локальная часть (≤2 руны) — целиком в "***".
func Email(s string) string {
	at := strings.IndexByte(s, '@')
	if at < 0 || strings.LastIndexByte(s, '@') != at {
		return "***"
	}

	local := []rune(s[:at])
	if len(local) <= 2 {
		return "***" + s[at:]
	}

	return string(local[:2]) + "***" + s[at:]
}

// Token возвращает короткий отпечаток токена (sha256, 8 hex-символов),
// по которому можно сопоставить записи логов, не раскрывая сам токен.
func Token(raw string) string {
	if raw == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(raw))
	return "tok:" + hex.EncodeToString(sum[:4])
}
