// Package config loads service configuration from config.yml, .env files and
// environment variables using viper and godotenv.
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("nyaya", &cfg,
//	    config.WithDefaults(map[string]any{"smtp.port": 587}),
//	    config.WithEnvAliases(map[string]string{"GROQ_API_KEY": "llm.api_key"}),
//	)
//
// Environment variables override file values. LLM_API_KEY binds to
// llm.api_key, SMTP_FROM_EMAIL to smtp.from_email, and so on.
package config
