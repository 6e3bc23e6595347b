package config

// Version is the build version reported by /health and /api/v1/tools.
// Overridden at build time via -ldflags "-X admetric.ai/ads-api-gateway/config.Version=...".
var Version = "dev"
