package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"medicine-reminder/internal/config"
	"medicine-reminder/internal/handlers"
	"medicine-reminder/internal/i18n"
	"medicine-reminder/internal/reminder"
	"medicine-reminder/internal/storage"
	"medicine-reminder/internal/utils"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN, CHAT_ID, DATA_FILE

	cfg := config.Load()

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: 30 * time.Second})
	utils.Must(err)

	store := storage.New(cfg.DataFile)
	notifier := handlers.NewNotifier(bot, cfg.ChatID)

	svc, err := reminder.NewService(store, notifier, clockwork.NewRealClock())
	utils.Must(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := svc.Run(ctx); err != nil {
			log.Println("reminder loop stopped:", err)
		}
	}()

	sendStartupMessage(bot, svc, cfg.ChatID)

	h := handlers.NewHandler(bot, svc)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	log.Println("bot started, waiting for updates")
	for upd := range updates {
		switch {
		case upd.Message != nil:
			h.HandleMessage(upd.Message)
		case upd.CallbackQuery != nil:
			h.HandleCallback(upd.CallbackQuery)
		}
	}
	log.Println("bot stopped")
}

// sendStartupMessage announces the bot, best effort with a short
// deadline so a slow Telegram API cannot stall startup.
func sendStartupMessage(bot *tgbotapi.BotAPI, svc *reminder.Service, chatID int64) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		text := i18n.For(svc.Locale())
		if _, err := bot.Send(tgbotapi.NewMessage(chatID, text.StartupMessage)); err != nil {
			log.Println("failed to send startup message:", err)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("startup message timed out")
	}
}
