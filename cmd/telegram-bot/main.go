package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jessevdk/go-flags"

	"tool-agent/agent"
	"tool-agent/config"
)

const (
	startMessage = "Hello! I can:\n" +
		"• Do arithmetic\n" +
		"• Look up past weather for a city\n" +
		"• Convert between currencies\n" +
		"• Answer questions from my knowledge base\n\n" +
		"Send /help for examples."

	helpMessage = "Available commands:\n" +
		"/start - Start the bot\n" +
		"/help - Show this help message\n\n" +
		"Or just ask me things like:\n" +
		"• \"What is 12.5% of 243?\"\n" +
		"• \"What was the weather in Paris yesterday?\"\n" +
		"• \"Convert 100 USD to EUR\"\n" +
		"• \"Who was Ada Lovelace?\""
)

// Answerer turns a user query into a reply.
type Answerer interface {
	ProcessUserQuery(ctx context.Context, query string) (string, error)
}

type options struct {
	Config string `short:"c" long:"config" description:"YAML configuration file" value-name:"FILE"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal(&config.MissingError{Name: config.EnvTelegramToken})
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chatAgent, err := agent.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Println("Bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			// Handled inline: replies go out in the order messages arrive.
			reply := handleMessage(ctx, chatAgent, update.Message)
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			msg.ReplyToMessageID = update.Message.MessageID
			if _, err := bot.Send(msg); err != nil {
				log.Printf("Error sending message: %v", err)
			}
		}
	}
}

func handleMessage(ctx context.Context, answerer Answerer, message *tgbotapi.Message) string {
	if message.From != nil {
		log.Printf("[%s] %s", message.From.UserName, message.Text)
	}

	switch message.Command() {
	case "start":
		return startMessage
	case "help":
		return helpMessage
	case "":
		response, err := answerer.ProcessUserQuery(ctx, message.Text)
		if err != nil {
			log.Printf("Agent error: %v", err)
			return "Sorry, I couldn't process that right now."
		}
		return response
	default:
		return "Unknown command. Try /help"
	}
}
