package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

// sendPrefix matches the chat-bot's "/send N ..." surface syntax, rewritten
// to the dispatcher's own "N: ..." direct-command grammar before being
// pushed (spec.md §4.6's prefix normalization).
var sendPrefix = regexp.MustCompile(`^/send\s+(\d+)\s+(.*)$`)

// Chatbot is the long-poll chat-bot producer (spec.md §4.6). It is written
// against Telegram's long-poll getUpdates endpoint, the simplest provider
// shape in this family, but only talks to c.apiBase so the provider host
// is swappable in tests.
type Chatbot struct {
	BotToken       string
	AllowedUserIDs map[int64]bool
	apiBase        string // overridable in tests
	client         *http.Client
}

// NewChatbot returns a Chatbot for the given token and sender allow-list.
func NewChatbot(botToken string, allowedUserIDs []int64) *Chatbot {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &Chatbot{
		BotToken:       botToken,
		AllowedUserIDs: allowed,
		apiBase:        "https://api.telegram.org",
		client:         &http.Client{Timeout: constants.IOTimeout},
	}
}

type tgUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type tgResponse struct {
	OK     bool       `json:"ok"`
	Result []tgUpdate `json:"result"`
}

// Run long-polls for updates until ctx is canceled. Network errors back off
// exponentially, capped at constants.ChatPollBackoffCap.
func (c *Chatbot) Run(ctx context.Context, out chan<- Line) {
	guard("chatbot", func() { c.run(ctx, out) })
}

func (c *Chatbot) run(ctx context.Context, out chan<- Line) {
	if c.BotToken == "" {
		return
	}

	var offset int64
	backoff := time.Second

	for ctx.Err() == nil {
		updates, err := c.poll(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("chatbot producer: poll: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > constants.ChatPollBackoffCap {
				backoff = constants.ChatPollBackoffCap
			}
			continue
		}
		backoff = time.Second

		for _, u := range updates {
			offset = u.UpdateID + 1
			c.handleUpdate(ctx, u, out)
		}
	}
}

func (c *Chatbot) poll(ctx context.Context, offset int64) ([]tgUpdate, error) {
	ctx, cancel := context.WithTimeout(ctx, 35*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=30&offset=%d", c.apiBase, c.BotToken, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building getUpdates request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading getUpdates response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("getUpdates HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed tgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing getUpdates response: %w", err)
	}
	return parsed.Result, nil
}

func (c *Chatbot) handleUpdate(ctx context.Context, u tgUpdate, out chan<- Line) {
	if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
		return
	}
	senderID := u.Message.From.ID
	if !c.AllowedUserIDs[senderID] {
		c.reply(ctx, u.Message.Chat.ID, "not authorized")
		return
	}

	text := normalize(u.Message.Text)
	push(out, Line{Source: "chatbot", Text: text})
}

// normalize rewrites "/send N payload" into "N: payload"; any other text
// passes through unchanged, letting a user type direct "N: ..." commands
// straight into the chat.
func normalize(text string) string {
	if m := sendPrefix.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return m[1] + ": " + m[2]
	}
	return strings.TrimSpace(text)
}

func (c *Chatbot) reply(ctx context.Context, chatID int64, text string) {
	ctx, cancel := context.WithTimeout(ctx, constants.IOTimeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("chatbot producer: reply to %d failed: %v", chatID, err)
		return
	}
	_ = resp.Body.Close()
}
