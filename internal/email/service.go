package email

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"
)

type Service interface {
	SendDiseaseNotification(ctx context.Context, to, workerName, diseaseType string, diagnosisDate time.Time) error
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendDiseaseNotification(ctx context.Context, to, workerName, diseaseType string, diagnosisDate time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Reportable disease case: %s", workerName))
	m.SetBody("text/plain", fmt.Sprintf(
		"A reportable disease case has been marked as notified.\n\nWorker: %s\nDisease: %s\nDiagnosis date: %s\n",
		workerName, diseaseType, diagnosisDate.Format("2006-01-02")))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
