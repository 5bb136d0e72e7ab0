package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Fraud    FraudConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// GatewayConfig holds Razorpay credentials. Mode "mock" swaps in the
// in-process gateway so the whole payment flow runs without a live account.
type GatewayConfig struct {
	KeyID         string
	KeySecret     string
	Mode          string // "live" | "mock"
	WebhookSecret string
	BaseURL       string
}

// PaymentConfig carries the RBI-mandated transaction caps and the payment
// window. All amounts are paise.
type PaymentConfig struct {
	TimeoutWindow  time.Duration
	MaxRetries     int
	CODMaxPaise    int64 // ₹50,000 COD cap
	DailyCapPaise  int64 // ₹1 Lakh per user per day
	OnlineMaxPaise int64 // ₹2 Lakh per online transaction
	MinPaise       int64 // ₹1.00 floor
	MerchantVPA    string
	MerchantName   string
}

type FraudConfig struct {
	LowThreshold      int
	MediumThreshold   int
	HighThreshold     int
	CODRiskCutoff     int
	MaxTxnPerHour     int
	MaxTxnPerDay      int
	HourlyAmountPaise int64
	DailyAmountPaise  int64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "dayliz:dayliz@tcp(localhost:3306)/dayliz?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "dayliz",
		},
		Gateway: GatewayConfig{
			KeyID:         envOr("RAZORPAY_KEY_ID", "rzp_test_mock_key"),
			KeySecret:     envOr("RAZORPAY_KEY_SECRET", "mock_secret_key"),
			Mode:          paymentMode(),
			WebhookSecret: envOr("PAYMENT_WEBHOOK_SECRET", ""),
			BaseURL:       envOr("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		},
		Payment: PaymentConfig{
			TimeoutWindow:  15 * time.Minute,
			MaxRetries:     3,
			CODMaxPaise:    50_000_00,
			DailyCapPaise:  100_000_00,
			OnlineMaxPaise: 200_000_00,
			MinPaise:       100,
			MerchantVPA:    "merchant@razorpay",
			MerchantName:   "Dayliz",
		},
		Fraud: FraudConfig{
			LowThreshold:      30,
			MediumThreshold:   60,
			HighThreshold:     80,
			CODRiskCutoff:     70,
			MaxTxnPerHour:     5,
			MaxTxnPerDay:      20,
			HourlyAmountPaise: 50_000_00,
			DailyAmountPaise:  200_000_00,
		},
	}
}

// paymentMode resolves to "mock" when PAYMENT_MODE says so or when the
// configured credentials are the mock placeholders.
func paymentMode() string {
	if m := os.Getenv("PAYMENT_MODE"); m != "" {
		return m
	}
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || strings.HasPrefix(keyID, "rzp_test_mock") || strings.HasPrefix(secret, "mock_") {
		return "mock"
	}
	return "live"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
