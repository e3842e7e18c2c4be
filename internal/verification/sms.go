package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

// Sender dispatches an OTP code over SMS.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

type smsGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSMSGateway returns a Sender backed by the configured SMS provider. The
// client timeout bounds every dispatch; a timeout surfaces as a retryable
// failure, distinct from a provider rejection.
func NewSMSGateway(baseURL, apiKey string) Sender {
	if apiKey == "" {
		logger.L().Warn("SMS API key is empty")
	}

	return &smsGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *smsGateway) Send(ctx context.Context, phone, code string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", "sms"),
		zap.String("phone", phone),
	)

	body := map[string]string{
		"to":      phone,
		"message": fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/sms", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("sms dispatch failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Error("sms provider rejected dispatch",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	log.Info("otp sms dispatched")
	return nil
}
