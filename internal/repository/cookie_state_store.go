package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieStateMaxAge = 365 * 24 * time.Hour

// stateClaims binds a stored value to the cookie name it was written under.
type stateClaims struct {
	jwt.RegisteredClaims
	Value string `json:"v"`
}

// CookieStateStore keeps state in the respondent's browser, one signed
// cookie per key. It is scoped to a single request/response pair.
type CookieStateStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secret []byte
	secure bool
	// written shadows cookies set during this request.
	written map[string]*string
}

// NewCookieStateStore creates a CookieStateStore for one exchange.
func NewCookieStateStore(w http.ResponseWriter, r *http.Request, secret string, secure bool) *CookieStateStore {
	return &CookieStateStore{
		w:       w,
		r:       r,
		secret:  []byte(secret),
		secure:  secure,
		written: make(map[string]*string),
	}
}

// Get returns the value of a validly signed cookie. Tampered or foreign
// cookies read as absent.
func (s *CookieStateStore) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	cookie, err := s.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cookie: %w", err)
	}

	claims, err := s.parse(cookie.Value)
	if err != nil || claims.Subject != key {
		return "", false, nil
	}
	return claims.Value, true, nil
}

func (s *CookieStateStore) Set(_ context.Context, key, value string) error {
	now := time.Now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  key,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Value: value,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign state cookie: %w", err)
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cookieStateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = &value
	return nil
}

func (s *CookieStateStore) Remove(_ context.Context, key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = nil
	return nil
}

func (s *CookieStateStore) parse(tokenStr string) (*stateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &stateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse state cookie: %w", err)
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid state cookie claims")
	}
	return claims, nil
}
