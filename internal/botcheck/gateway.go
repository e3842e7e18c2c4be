// Package botcheck calls the external bot-verification service that scores
// the checkout widget token.
package botcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

var ErrBotRejected = errors.New("bot verification failed")

// Result is the verdict for one token.
type Result struct {
	Passed bool
	Score  float64
}

type Verifier interface {
	// Verify checks the token. A transport failure fails open (pass,
	// score 0) so an outage of the scoring service cannot stop every
	// checkout; an explicit rejection from the service fails closed.
	Verify(ctx context.Context, token, remoteIP string) (Result, error)
}

type gateway struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

func NewGateway(verifyURL, secret string) Verifier {
	if secret == "" {
		logger.L().Warn("bot-check secret is empty")
	}

	return &gateway{
		verifyURL: verifyURL,
		secret:    secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type verifyResponse struct {
	Success bool     `json:"success"`
	Score   float64  `json:"score"`
	Errors  []string `json:"error-codes,omitempty"`
}

func (g *gateway) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	log := logger.FromCtx(ctx).With(zap.String("gateway", "botcheck"))

	if token == "" {
		log.Warn("missing bot token")
		return Result{}, ErrBotRejected
	}

	form := url.Values{}
	form.Set("secret", g.secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Fail open on transport error.
		log.Error("bot-check unreachable, admitting with zero score", zap.Error(err))
		return Result{Passed: true, Score: 0}, nil
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error("bot-check response unreadable, admitting with zero score", zap.Error(err))
		return Result{Passed: true, Score: 0}, nil
	}

	if !body.Success {
		log.Warn("bot-check rejected token", zap.Strings("error_codes", body.Errors))
		return Result{Passed: false, Score: body.Score}, ErrBotRejected
	}

	return Result{Passed: true, Score: body.Score}, nil
}
