package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramToken string
	ChatID        int64
	DataFile      string
}

func Load() Config {
	return Config{
		TelegramToken: getBotToken(),
		ChatID:        getChatID(),
		DataFile:      getDataFile(),
	}
}

func getBotToken() string {
	// Docker secret first, env var second.
	if data, err := os.ReadFile("/run/secrets/telegram_bot_token"); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token
		}
	}
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token != "" {
		return token
	}
	log.Fatal("no bot token: set TELEGRAM_BOT_TOKEN or the docker secret")
	return ""
}

func getChatID() int64 {
	raw := strings.TrimSpace(os.Getenv("CHAT_ID"))
	if raw == "" {
		log.Fatal("CHAT_ID is not set")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatal("CHAT_ID must be a number: ", err)
	}
	return id
}

func getDataFile() string {
	if path := strings.TrimSpace(os.Getenv("DATA_FILE")); path != "" {
		return path
	}
	return defaultDataFile
}

const defaultDataFile = "medicine_data.json"
