package main

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"
)

// HookMessage is the format of messages sent to hooks
type HookMessage struct {
	// Castle is the castle concerned by the message
	Castle string `json:"castle_id"`
	// Name is the castle name, hook consumers mostly care about this
	Name string `json:"name"`
	// Visited is the new state of the flag
	Visited bool `json:"visited"`
}

// WebhookWriter regularly sends updates to a webhook with a POST http request
type WebhookWriter struct {
	sync.Mutex
	baseurl     string
	bearerToken string
	quit        chan (bool)
	headers     map[string]string
	messages    []HookMessage
}

// NewWebhookWriter creates and returns a new WebhookWriter
// it starts a goroutine to send messages every MessageSendInterval ms.
func NewWebhookWriter(url string, headers map[string]string, bearerToken string) *WebhookWriter {
	whw := &WebhookWriter{baseurl: url, headers: headers, bearerToken: bearerToken, quit: make(chan bool)}

	go func() {
		ticker := time.NewTicker(MessageSendInterval)
		for {
			select {
			case <-ticker.C:
				whw.send()

			case <-whw.quit:
				ticker.Stop()
			}
		}
	}()

	return whw
}

func (whw *WebhookWriter) Write(message HookMessage) {
	whw.Lock()
	defer whw.Unlock()

	whw.messages = append(whw.messages, message)
	log.Debug("Adding one message to WHW: ", message)
}

func (whw *WebhookWriter) send() {
	whw.Lock()
	if len(whw.messages) == 0 {
		whw.Unlock()
		return
	}
	log.Debug("Sending WHW messages")

	b, err := json.Marshal(whw.messages)
	if err != nil {
		log.Error(err)
	}
	whw.messages = nil
	whw.Unlock()

	webhookBatches.Inc()

	go func() {
		tr := &http.Transport{DisableKeepAlives: true}
		hc := http.Client{Transport: tr}

		req, err := http.NewRequest("POST", whw.baseurl, bytes.NewReader(b))
		if err != nil {
			log.Warn("Webhook request error: ", err)
			return
		}

		req.Header.Add("Content-Type", "application/json")
		req.Header.Add("Authorization", "Bearer "+whw.bearerToken)
		req.Header.Set("User-Agent", "FortMap webhook handler")

		for h, v := range whw.headers {
			req.Header.Add(h, v)
		}

		resp, err := hc.Do(req)
		if resp != nil {
			defer resp.Body.Close()
			_, err = io.Copy(ioutil.Discard, resp.Body)
			log.Debugf("Webhook replied with status code %d", resp.StatusCode)
		}

		if err != nil {
			log.Warn("Webhook POST error: ", err)
			return
		}
	}()
}
