package telegram

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsage/server/config"
	"compsage/server/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNotifySessionSavedDisabled(t *testing.T) {
	cfg := &config.Config{}
	svc := NewService(cfg, testLogger())

	err := svc.NotifySessionSaved(models.AdjustmentSession{}, models.PropertyRecord{}, models.PropertyRecord{})
	assert.NoError(t, err)
}

func TestNotifySessionSavedFiltered(t *testing.T) {
	minPrice := int64(500000)
	cfg := &config.Config{}
	cfg.Telegram.Enabled = true
	cfg.Telegram.MinPrice = &minPrice
	svc := NewService(cfg, testLogger())

	// A subject below the price floor is dropped before any send attempt
	subject := models.PropertyRecord{Price: 400000}
	err := svc.NotifySessionSaved(models.AdjustmentSession{}, subject, models.PropertyRecord{})
	assert.NoError(t, err)
}

func TestNotifySessionSavedRequiresToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.Enabled = true
	svc := NewService(cfg, testLogger())

	subject := models.PropertyRecord{Price: 600000}
	err := svc.NotifySessionSaved(models.AdjustmentSession{}, subject, models.PropertyRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot token")
}

func TestSendMessageDisabled(t *testing.T) {
	cfg := &config.Config{}
	svc := NewService(cfg, testLogger())

	assert.NoError(t, svc.SendMessage("ignored"))
}
