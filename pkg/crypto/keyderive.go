package crypto

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// Ошибки вывода ключа
var (
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")
)

// DefaultIterations - количество итераций PBKDF2 по умолчанию
// Ключ выводится один раз при старте процесса, поэтому стоимость не критична
const DefaultIterations = 100_000

// keySalt - фиксированная соль вывода ключа.
// Секретность обеспечивает passphrase; соль лишь разводит ключи
// этого приложения с ключами других потребителей той же passphrase.
var keySalt = []byte("stopguard.credentials.v1")

// DeriveKey выводит 32-байтовый ключ AES-256 из произвольной passphrase
//
// Снимает требование "ровно 32 байта" с переменной ENCRYPTION_KEY:
// пользователь задаёт любую фразу, PBKDF2-SHA256 разворачивает её
// в ключ фиксированной длины.
func DeriveKey(passphrase string) ([]byte, error) {
	return DeriveKeyWithIterations(passphrase, DefaultIterations)
}

// DeriveKeyWithIterations выводит ключ с указанным числом итераций
// iterations меньше 1 заменяется на DefaultIterations
func DeriveKeyWithIterations(passphrase string, iterations int) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(passphrase), keySalt, iterations, 32, sha256.New), nil
}
