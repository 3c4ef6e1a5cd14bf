package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Los stores guardan el hash del refresh token, nunca el token crudo.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RandomNumericCode genera un código numérico de ancho fijo, uniforme en
// [10^(width-1), 10^width). El primer dígito nunca es cero, así el ancho
// del código es estable para el usuario.
func RandomNumericCode(width int) (string, error) {
	if width < 1 {
		return "", fmt.Errorf("code width must be positive, got %d", width)
	}
	low := pow10(width - 1)
	span := pow10(width) - low
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", low+n.Int64()), nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
