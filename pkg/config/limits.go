package config

import "time"

// LimitsConfig agrupa las cuotas y ventanas del lado cliente:
// sesión de invitado, límites por dispositivo y el intervalo de donación.
type LimitsConfig struct {
	GuestSessionDuration time.Duration
	GuestMessageLimit    int
	GuestCleanupInterval time.Duration
	MaxAccountsPerDevice int
	GuestSessionCooldown time.Duration
	DonationInterval     int
	ReminderTickInterval time.Duration
}

func loadLimitsConfig() LimitsConfig {
	return LimitsConfig{
		GuestSessionDuration: getEnvDuration("GUEST_SESSION_DURATION", 24*time.Hour),
		GuestMessageLimit:    getEnvInt("GUEST_MESSAGE_LIMIT", 20),
		GuestCleanupInterval: getEnvDuration("GUEST_CLEANUP_INTERVAL", time.Hour),
		MaxAccountsPerDevice: getEnvInt("MAX_ACCOUNTS_PER_DEVICE", 2),
		GuestSessionCooldown: getEnvDuration("GUEST_SESSION_COOLDOWN", 7*24*time.Hour),
		DonationInterval:     getEnvInt("DONATION_INTERVAL", 5),
		ReminderTickInterval: getEnvDuration("REMINDER_TICK_INTERVAL", time.Minute),
	}
}
