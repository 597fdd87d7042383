package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// TelegramService is a thin Bot API client used for the bot intake channel
// and for best-effort staff notifications.
type TelegramService struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewTelegramService(botToken string) *TelegramService {
	return &TelegramService{
		token:   botToken,
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", botToken),
		client:  &http.Client{},
	}
}

type tgResp struct {
	Ok          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// TelegramUpdate is the subset of the webhook payload the intake cares about.
type TelegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64  `json:"message_id"`
		Text      string `json:"text"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"from"`
	} `json:"message"`
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.token == "" || chatID == 0 {
		log.Printf("[tg][skip] token or chatID empty (token? %v chatID=%d)", t != nil && t.token != "", chatID)
		return nil
	}
	body := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	b, _ := json.Marshal(body)
	url := t.baseURL + "/sendMessage"
	req, _ := http.NewRequest("POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("[tg][send][err] http: %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var api tgResp
	_ = json.Unmarshal(respBody, &api)
	if resp.StatusCode != 200 || !api.Ok {
		log.Printf("[tg][send][err] http_status=%d body=%s", resp.StatusCode, string(respBody))
		return fmt.Errorf("telegram sendMessage failed: status=%d ok=%v desc=%s", resp.StatusCode, api.Ok, api.Description)
	}
	return nil
}

func (t *TelegramService) SetWebhook(url string) error {
	if t == nil || t.token == "" || url == "" {
		return nil
	}
	full := t.baseURL + "/setWebhook?url=" + url
	log.Printf("[tg][setWebhook] %s", full)
	req, _ := http.NewRequest("GET", full, nil)
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	log.Printf("[tg][setWebhook] status=%d body=%s", resp.StatusCode, string(b))
	return nil
}
