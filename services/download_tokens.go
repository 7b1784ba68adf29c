package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidDownloadToken = errors.New("invalid or expired download token")

const downloadTokenTTL = time.Hour

// DownloadTokens signs short-lived links to a job's export.
type DownloadTokens struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewDownloadTokens(secretKey string) *DownloadTokens {
	return &DownloadTokens{
		secretKey: []byte(secretKey),
		ttl:       downloadTokenTTL,
		now:       time.Now,
	}
}

type DownloadClaims struct {
	JobID  string `json:"job_id"`
	Format string `json:"format"`
	jwt.RegisteredClaims
}

func (s *DownloadTokens) Issue(jobID, format string) (string, error) {
	now := s.now()
	claims := DownloadClaims{
		JobID:  jobID,
		Format: format,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   jobID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Parse verifies the token and returns its claims.
func (s *DownloadTokens) Parse(tokenString string) (*DownloadClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDownloadToken, err)
	}

	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid || claims.JobID == "" {
		return nil, ErrInvalidDownloadToken
	}
	return claims, nil
}
