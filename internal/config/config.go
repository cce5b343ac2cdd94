package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used:
// strings for identifiers and secrets, ints for durations and costs,
// floats for the pricing policy.
type Config struct {
	Env       string // application environment ("dev" enables verbose error bodies)
	Port      string // HTTP port to listen on
	MongoURI  string // MongoDB connection string
	MongoDB   string // database name
	JWTSecret string // secret used to sign session JWTs
	JWTTTLMin int    // session token time-to-live in minutes

	BcryptCost int // bcrypt cost for password hashing

	FrontendURL string // base URL used in password-reset links
	BackendURL  string // base URL prefixed to uploaded file references
	UploadDir   string // directory where uploaded images are stored

	SMTPHost string // outbound mail server
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string // From address on OTP/reset mails

	RazorpayKeyID     string // payment gateway key id (public)
	RazorpayKeySecret string // payment gateway secret, also the HMAC key
	RazorpayBaseURL   string // gateway API base, overridable for tests

	WhatsAppToken   string // messaging webhook bearer token (empty disables alerts)
	WhatsAppPhoneID string // sending phone number id
	AdminPhone      string // recipient of admin order alerts

	TaxRate             float64 // fraction of the items subtotal, e.g. 0.18
	ShippingFlat        float64 // shipping fee below the free threshold
	FreeShippingMin     float64 // items subtotal at which shipping is free
	PriceTolerance      float64 // accepted drift between client and server totals
	LegacyStockBehavior bool    // replicate the old per-call stock decrement
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must(); missing values
// cause the program to exit with a fatal log message. Everything else
// falls back to a development-friendly default.
func Load() Config {
	return Config{
		Env:       envStr("APP_ENV", "dev"),
		Port:      must("APP_PORT"),
		MongoURI:  must("MONGO_URI"),
		MongoDB:   envStr("MONGO_DB", "shopcart"),
		JWTSecret: must("JWT_SECRET"),
		JWTTTLMin: envInt("JWT_TTL_MIN", 7*24*60),

		BcryptCost: envInt("BCRYPT_COST", 10),

		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),
		BackendURL:  envStr("BACKEND_URL", "http://localhost:8000"),
		UploadDir:   envStr("UPLOAD_DIR", "uploads"),

		SMTPHost: envStr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: envInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: envStr("MAIL_FROM", os.Getenv("SMTP_USER")),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   envStr("RAZORPAY_BASE_URL", "https://api.razorpay.com"),

		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		AdminPhone:      os.Getenv("ADMIN_PHONE"),

		TaxRate:             envFloat("TAX_RATE", 0.18),
		ShippingFlat:        envFloat("SHIPPING_FLAT", 50),
		FreeShippingMin:     envFloat("FREE_SHIPPING_MIN", 1000),
		PriceTolerance:      envFloat("PRICE_TOLERANCE", 1),
		LegacyStockBehavior: envBool("LEGACY_STOCK_BEHAVIOR", false),
	}
}

// Dev reports whether verbose error bodies should be returned.
func (c Config) Dev() bool { return c.Env == "dev" || c.Env == "development" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}
