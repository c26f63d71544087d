// Package timezone keeps every server-stamped time (created_at, checkin_time, checkout_time, token issue times)
// in one application location.
//
// The location comes from APP_TIMEZONE and is installed once at startup:
//
//	timezone.Init(cfg.App.Timezone)
//	now := timezone.Now()
//	day, err := timezone.ParseDate("2024-06-01")
//
// Use IANA names such as "UTC" or "Asia/Jakarta". Until Init runs, UTC is used.
package timezone
