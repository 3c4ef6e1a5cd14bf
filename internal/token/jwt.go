package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indica que un token no pasó la verificación: firma
// inválida, estructura malformada o expiración en el pasado. El contenido
// de un token inválido nunca debe tratarse como confiable.
var ErrInvalidToken = errors.New("invalid token")

// TokenData es el resultado de decodificar un token verificado.
type TokenData struct {
	Subject string
	Claims  map[string]string
}

// claims registrados que no se exponen como claims de negocio al decodificar.
var registeredClaims = map[string]struct{}{
	"sub": {}, "exp": {}, "iat": {}, "nbf": {}, "iss": {}, "aud": {}, "jti": {},
}

// Generator firma claims con un secreto simétrico (HS256) y un TTL fijo.
// Hay dos instancias independientes: una para access tokens y otra para
// refresh tokens, cada una con su propio secreto. Un token firmado para un
// propósito falla criptográficamente si se presenta como el otro.
type Generator struct {
	secret []byte
	ttl    time.Duration
}

// NewGenerator crea un Generator con el secreto y TTL dados.
func NewGenerator(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl}
}

// TTL retorna el TTL configurado.
func (g *Generator) TTL() time.Duration { return g.ttl }

// Generate firma un token con subject, expiración now+TTL y los claims
// string adicionales dados (pueden ser nil).
func (g *Generator) Generate(subject string, claims map[string]string) (string, error) {
	now := time.Now().UTC()

	// El jti hace único cada token: sin él, dos emisiones para el mismo
	// subject dentro del mismo segundo firman strings idénticos, y un
	// refresh recién consumido reaparecería en el store al rotar.
	mc := jwtv5.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(g.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	for k, v := range claims {
		mc[k] = v
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mc)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decoder verifica y decodifica tokens firmados con el secreto dado.
type Decoder struct {
	secret []byte
}

// NewDecoder crea un Decoder para el secreto dado.
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Decode verifica firma y expiración, y retorna subject + claims string.
// Retorna ErrInvalidToken (envuelto) ante cualquier token no confiable;
// la validación de forma de los claims es responsabilidad del caller.
func (d *Decoder) Decode(raw string) (TokenData, error) {
	parsed, err := jwtv5.Parse(raw,
		func(t *jwtv5.Token) (any, error) { return d.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return TokenData{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return TokenData{}, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return TokenData{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	out := TokenData{Subject: sub, Claims: map[string]string{}}
	for k, v := range mc {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		if s, isStr := v.(string); isStr {
			out.Claims[k] = s
		}
	}
	return out, nil
}
