package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingDefaults are applied to companies that do not override them.
type BillingDefaults struct {
	MealPriceCents     int64  `mapstructure:"mealPriceCents"`
	DailyTarget        int    `mapstructure:"dailyTarget"`
	ChargeableWeekdays []int  `mapstructure:"chargeableWeekdays"`
	Timezone           string `mapstructure:"timezone"`
	InvoiceDueDays     int    `mapstructure:"invoiceDueDays"`
	InvoiceNumber      string `mapstructure:"invoiceNumber"`
}

func DefaultBillingDefaults() BillingDefaults {
	return BillingDefaults{
		MealPriceCents:     8000,
		DailyTarget:        0,
		ChargeableWeekdays: []int{1, 2, 3, 4}, // Monday through Thursday
		Timezone:           "America/Mexico_City",
		InvoiceDueDays:     15,
		InvoiceNumber:      "INV-{YYYY}{MM}-{SEQ6}",
	}
}

// BillingDefaultsHolder exposes the current defaults and hot-reloads them
// when the backing file changes.
type BillingDefaultsHolder struct {
	current atomic.Value // holds BillingDefaults
}

func NewBillingDefaultsHolder() (*BillingDefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/cantina/config")
	v.AddConfigPath("/etc/cantina")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CANTINA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingDefaults()
		v.SetDefault("billing.mealPriceCents", defaults.MealPriceCents)
		v.SetDefault("billing.dailyTarget", defaults.DailyTarget)
		v.SetDefault("billing.chargeableWeekdays", defaults.ChargeableWeekdays)
		v.SetDefault("billing.timezone", defaults.Timezone)
		v.SetDefault("billing.invoiceDueDays", defaults.InvoiceDueDays)
		v.SetDefault("billing.invoiceNumber", defaults.InvoiceNumber)
	}

	var cfg BillingDefaults
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingDefaults(cfg); err != nil {
		return nil, err
	}

	holder := &BillingDefaultsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingDefaults
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-defaults] reload failed: %v", err)
			return
		}
		if err := validateBillingDefaults(updated); err != nil {
			log.Printf("[billing-defaults] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-defaults] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingDefaults returns a holder pinned to the given values,
// without file watching. Intended for tests.
func NewStaticBillingDefaults(cfg BillingDefaults) *BillingDefaultsHolder {
	holder := &BillingDefaultsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingDefaultsHolder) Get() BillingDefaults {
	return h.current.Load().(BillingDefaults)
}

func validateBillingDefaults(cfg BillingDefaults) error {
	if cfg.MealPriceCents < 0 {
		return errors.New("billing.mealPriceCents cannot be negative")
	}
	if cfg.DailyTarget < 0 {
		return errors.New("billing.dailyTarget cannot be negative")
	}
	for _, day := range cfg.ChargeableWeekdays {
		if day < 0 || day > 6 {
			return errors.New("billing.chargeableWeekdays entries must be 0-6")
		}
	}
	if cfg.InvoiceDueDays <= 0 {
		return errors.New("billing.invoiceDueDays must be positive")
	}
	return nil
}
