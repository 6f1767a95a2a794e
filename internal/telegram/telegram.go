package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"compsage/server/config"
	"compsage/server/internal/database"
	"compsage/server/internal/models"
)

// Service posts notifications to a Telegram chat when analysts save
// adjustment sessions.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config *config.Config
	db     *database.Database
}

func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) SetDatabase(db *database.Database) {
	s.db = db
}

// notificationFilters builds the configured subject filters. Returns
// nil when no filter settings are present.
func (s *Service) notificationFilters() *models.NotificationFilters {
	t := s.config.Telegram
	if t.MinPrice == nil && t.MaxPrice == nil &&
		t.MinSquareFeet == nil && t.MaxSquareFeet == nil &&
		len(t.PostalPrefixes) == 0 && len(t.PropertyTypes) == 0 {
		return nil
	}

	types := make([]models.PropertyType, 0, len(t.PropertyTypes))
	for _, raw := range t.PropertyTypes {
		types = append(types, models.PropertyType(raw))
	}

	return &models.NotificationFilters{
		MinPrice:       t.MinPrice,
		MaxPrice:       t.MaxPrice,
		MinSquareFeet:  t.MinSquareFeet,
		MaxSquareFeet:  t.MaxSquareFeet,
		PostalPrefixes: t.PostalPrefixes,
		PropertyTypes:  types,
	}
}

// priceAnalysis compares an adjusted price per square foot against the
// average for the comp's postal area.
func (s *Service) priceAnalysis(adjustedPrice int64, squareFeet int, postalCode string) (string, string, error) {
	if s.db == nil {
		return "", "", errors.New("database connection not initialized")
	}

	if squareFeet <= 0 {
		return "", "", errors.New("invalid square footage")
	}
	if len(postalCode) < 3 {
		return "", "", errors.New("invalid postal code")
	}

	perSqFt := float64(adjustedPrice) / float64(squareFeet)
	prefix := postalCode[:3]

	stats, err := s.db.GetAreaStats(prefix, "")
	if err != nil {
		return fmt.Sprintf("$%.0f/sqft", perSqFt), "Area comparison unavailable", err
	}

	if stats.AvgPricePerSqFt <= 0 {
		return fmt.Sprintf("$%.0f/sqft", perSqFt), "No priced listings in area", nil
	}

	diff := ((perSqFt - stats.AvgPricePerSqFt) / stats.AvgPricePerSqFt) * 100
	var analysis string
	switch {
	case diff <= -10:
		analysis = fmt.Sprintf("%.1f%% below area average ($%.0f/sqft)", -diff, stats.AvgPricePerSqFt)
	case diff >= 10:
		analysis = fmt.Sprintf("%.1f%% above area average ($%.0f/sqft)", diff, stats.AvgPricePerSqFt)
	default:
		analysis = fmt.Sprintf("Close to area average ($%.0f/sqft)", stats.AvgPricePerSqFt)
	}

	return fmt.Sprintf("$%.0f/sqft", perSqFt), analysis, nil
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.config.Telegram.Enabled {
		return nil
	}

	if s.config.Telegram.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.Telegram.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.Telegram.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.Telegram.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifySessionSaved sends a notification about a saved adjustment
// session.
func (s *Service) NotifySessionSaved(session models.AdjustmentSession, subject, comp models.PropertyRecord) error {
	if !s.config.Telegram.Enabled {
		return nil
	}

	if !s.notificationFilters().Allows(subject) {
		s.logger.WithField("subject_id", subject.ID).Debug("Session notification filtered out")
		return nil
	}

	var perSqFt, analysis string
	if s.db != nil && session.AdjustedPrice > 0 && comp.SquareFeet > 0 && len(comp.PostalCode) >= 3 {
		var err error
		perSqFt, analysis, err = s.priceAnalysis(session.AdjustedPrice, comp.SquareFeet, comp.PostalCode)
		if err != nil {
			s.logger.WithError(err).Error("Failed to get price analysis")
		}
	}
	if perSqFt == "" {
		perSqFt = "N/A"
	}
	if analysis == "" {
		analysis = "N/A (price analysis unavailable)"
	}

	message := fmt.Sprintf(
		"<b>Adjustment session saved</b>\n\n"+
			"🏠 Subject: %s, %s\n"+
			"🆚 Comp: %s, %s\n"+
			"💰 Comp price: $%d\n"+
			"📈 Total adjustment: $%+d\n"+
			"💵 Adjusted price: $%d\n"+
			"💲 %s\n"+
			"📊 %s",
		subject.Street, subject.City,
		comp.Street, comp.City,
		comp.Price,
		session.Adjustments.Total(),
		session.AdjustedPrice,
		perSqFt,
		analysis,
	)

	return s.SendMessage(message)
}
