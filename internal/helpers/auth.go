package helpers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beego/beego/v2/server/web/context"
)

const (
	ctxClaimsKey      = "__gestion_mid_jwt_claims"
	ctxProfesionalKey = "__gestion_mid_profesional"
	headerProfesional = "X-Profesional-Id"
)

var (
	// ErrNoAuthHeader se devuelve cuando no se encuentra el header Authorization.
	ErrNoAuthHeader = errors.New("authorization header missing")
	// ErrInvalidToken se devuelve cuando el formato del token no es un JWT válido.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrClaimNotFound indica que el claim requerido no está presente.
	ErrClaimNotFound = errors.New("claim not found")
)

// Claims obtiene y almacena en caché los claims del JWT presente en Authorization.
func Claims(ctx *context.Context) (map[string]interface{}, error) {
	if cached := ctx.Input.GetData(ctxClaimsKey); cached != nil {
		if claims, ok := cached.(map[string]interface{}); ok {
			return claims, nil
		}
	}

	token, err := extractBearer(ctx)
	if err != nil {
		return nil, err
	}
	claims, err := decodeClaims(token)
	if err != nil {
		return nil, err
	}
	ctx.Input.SetData(ctxClaimsKey, claims)
	return claims, nil
}

// ProfesionalID resuelve la identidad del profesional que llama: claim profesional_id,
// luego sub, y por último el header X-Profesional-Id cuando no viene token.
func ProfesionalID(ctx *context.Context) (string, error) {
	if cached, ok := ctx.Input.GetData(ctxProfesionalKey).(string); ok && cached != "" {
		return cached, nil
	}

	claims, err := Claims(ctx)
	switch {
	case err == nil:
		for _, key := range []string{"profesional_id", "sub"} {
			if id, cerr := getStringClaim(claims, key); cerr == nil {
				ctx.Input.SetData(ctxProfesionalKey, id)
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: profesional_id", ErrClaimNotFound)
	case errors.Is(err, ErrNoAuthHeader):
		if id := strings.TrimSpace(ctx.Input.Header(headerProfesional)); id != "" {
			ctx.Input.SetData(ctxProfesionalKey, id)
			return id, nil
		}
		return "", err
	default:
		return "", err
	}
}

// RequireRole valida que el token contenga al menos uno de los roles requeridos.
func RequireRole(ctx *context.Context, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	claims, err := Claims(ctx)
	if err != nil {
		return err
	}

	userRoles := extractRoles(claims)
	if len(userRoles) == 0 {
		return fmt.Errorf("%w: roles", ErrClaimNotFound)
	}

	roleSet := make(map[string]struct{}, len(userRoles))
	for _, r := range userRoles {
		roleSet[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	for _, required := range roles {
		if _, ok := roleSet[strings.ToLower(strings.TrimSpace(required))]; ok {
			return nil
		}
	}
	return errors.New("insufficient roles")
}

func getStringClaim(claims map[string]interface{}, key string) (string, error) {
	value, ok := claims[key]
	if !ok || value == nil {
		return "", fmt.Errorf("%w: %s", ErrClaimNotFound, key)
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("%w: %s", ErrClaimNotFound, key)
		}
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("claim %s no es un identificador", key)
	}
}

func extractBearer(ctx *context.Context) (string, error) {
	header := strings.TrimSpace(ctx.Input.Header("Authorization"))
	if header == "" {
		return "", ErrNoAuthHeader
	}

	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(header[7:]), nil
}

func decodeClaims(token string) (map[string]interface{}, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func extractRoles(claims map[string]interface{}) []string {
	if roles := parseRolesValue(claims["roles"]); len(roles) > 0 {
		return roles
	}
	if roles := parseRolesValue(claims["role"]); len(roles) > 0 {
		return roles
	}
	// Common nested structure: realm_access.roles
	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		if roles := parseRolesValue(realm["roles"]); len(roles) > 0 {
			return roles
		}
	}
	return nil
}

func parseRolesValue(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		split := strings.Split(v, ",")
		result := make([]string, 0, len(split))
		for _, part := range split {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			switch r := item.(type) {
			case string:
				if trimmed := strings.TrimSpace(r); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
		return result
	case []string:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return nil
	}
}
