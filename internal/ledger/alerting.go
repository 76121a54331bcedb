package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"enrichment-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Alerter is told when a client's balance drops below the threshold.
type Alerter interface {
	LowBalance(ctx context.Context, receipt *Receipt, threshold float64) error
}

// AlertingLedger wraps a Ledger and raises a low balance alert when a charge
// takes a balance from at or above the threshold to below it. Alert
// failures are logged and never fail the charge.
type AlertingLedger struct {
	Ledger
	threshold float64
	alerter   Alerter
	logger    logger.Logger
}

func NewAlertingLedger(inner Ledger, threshold float64, alerter Alerter, log logger.Logger) *AlertingLedger {
	return &AlertingLedger{
		Ledger:    inner,
		threshold: threshold,
		alerter:   alerter,
		logger:    log.WithFields(map[string]interface{}{"component": "ledger"}),
	}
}

func (a *AlertingLedger) Charge(ctx context.Context, clientID string, req ChargeRequest) (*Receipt, error) {
	receipt, err := a.Ledger.Charge(ctx, clientID, req)
	if err != nil || receipt == nil {
		return receipt, err
	}

	before := receipt.BalanceAfter + receipt.Amount
	if receipt.BalanceAfter < a.threshold && before >= a.threshold {
		if alertErr := a.alerter.LowBalance(ctx, receipt, a.threshold); alertErr != nil {
			a.logger.Warn("low balance alert failed", map[string]interface{}{
				"clientId": clientID,
				"error":    alertErr.Error(),
			})
		} else {
			a.logger.Info("low balance alert sent", map[string]interface{}{
				"clientId": clientID,
				"balance":  receipt.BalanceAfter,
			})
		}
	}
	return receipt, nil
}

// Publisher is the subset of the SNS client the alerter uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSAlerter publishes low balance alerts to an SNS topic.
type SNSAlerter struct {
	client   Publisher
	topicARN string
}

func NewSNSAlerter(client Publisher, topicARN string) *SNSAlerter {
	return &SNSAlerter{client: client, topicARN: topicARN}
}

type lowBalanceMessage struct {
	Event     string  `json:"event"`
	ClientID  string  `json:"clientId"`
	Balance   float64 `json:"balance"`
	Threshold float64 `json:"threshold"`
	ChargeID  string  `json:"chargeId"`
	Source    string  `json:"source"`
}

func (s *SNSAlerter) LowBalance(ctx context.Context, receipt *Receipt, threshold float64) error {
	body, err := json.Marshal(lowBalanceMessage{
		Event:     "credits.low_balance",
		ClientID:  receipt.ClientID,
		Balance:   receipt.BalanceAfter,
		Threshold: threshold,
		ChargeID:  receipt.ID,
		Source:    receipt.Source,
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String("Credit balance low"),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("publish low balance alert: %w", err)
	}
	return nil
}
