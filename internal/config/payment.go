package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PaymentSettings are operational knobs for the quote-to-cash core. They are
// hot-reloadable so currency or validity changes do not need a restart.
type PaymentSettings struct {
	DefaultCurrency   string `mapstructure:"defaultCurrency"`
	QuoteNumberPrefix string `mapstructure:"quoteNumberPrefix"`
	QuoteValidityDays int    `mapstructure:"quoteValidityDays"`
}

func DefaultPaymentSettings() PaymentSettings {
	return PaymentSettings{
		DefaultCurrency:   "ZAR",
		QuoteNumberPrefix: "QT",
		QuoteValidityDays: 30,
	}
}

type PaymentSettingsHolder struct {
	current atomic.Value // holds PaymentSettings
}

func NewPaymentSettingsHolder() (*PaymentSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("payments")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/convergio")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONVERGIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPaymentSettings()
		v.SetDefault("payments.defaultCurrency", defaults.DefaultCurrency)
		v.SetDefault("payments.quoteNumberPrefix", defaults.QuoteNumberPrefix)
		v.SetDefault("payments.quoteValidityDays", defaults.QuoteValidityDays)
	}

	var settings PaymentSettings
	if err := v.UnmarshalKey("payments", &settings); err != nil {
		return nil, err
	}
	if err := validatePaymentSettings(settings); err != nil {
		return nil, err
	}

	holder := &PaymentSettingsHolder{}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PaymentSettings
		if err := v.UnmarshalKey("payments", &updated); err != nil {
			log.Printf("[payment-settings] reload failed: %v", err)
			return
		}
		if err := validatePaymentSettings(updated); err != nil {
			log.Printf("[payment-settings] invalid settings ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[payment-settings] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPaymentSettingsHolder wraps fixed settings with no file watching.
func NewStaticPaymentSettingsHolder(settings PaymentSettings) *PaymentSettingsHolder {
	holder := &PaymentSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func (h *PaymentSettingsHolder) Get() PaymentSettings {
	return h.current.Load().(PaymentSettings)
}

func validatePaymentSettings(settings PaymentSettings) error {
	if strings.TrimSpace(settings.DefaultCurrency) == "" {
		return errors.New("payments.defaultCurrency cannot be empty")
	}
	if settings.QuoteValidityDays <= 0 {
		return errors.New("payments.quoteValidityDays must be positive")
	}
	return nil
}
