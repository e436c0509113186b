package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/andre/internal/model"
	"github.com/dukerupert/andre/internal/session"
)

// SentimentChoices are the fixed options of the form variant.
var SentimentChoices = []string{"Bullish", "Neutral", "Bearish"}

type SentimentView struct {
	ChatMode bool
	Choices  []string
	Current  string
	Chat     []model.ChatMessage
	Success  string
	Warning  string
	Error    string
}

func (c *Controller) sentimentView(st session.State) (SentimentView, error) {
	view := SentimentView{
		ChatMode: c.ChatMode(),
		Choices:  SentimentChoices,
		Current:  st.Sentiment(),
	}
	if view.ChatMode {
		history, err := st.ChatHistory()
		if err != nil {
			return view, err
		}
		view.Chat = append([]model.ChatMessage{{Role: model.ChatRoleBot, Text: MsgChatGreeting}}, history...)
	}
	return view, nil
}

// Sentiment renders the "What's Up" page. status is the outcome of the
// preceding submission, if any. In chat mode the outcome is already part of
// the conversation, so only the missing-input warning is shown.
func (c *Controller) Sentiment(st session.State, status string) (SentimentView, error) {
	view, err := c.sentimentView(st)
	if err != nil {
		return view, err
	}

	switch status {
	case StatusMissing:
		view.Warning = MsgSelectSentiment
	case StatusSaved:
		if !view.ChatMode && view.Current != "" {
			view.Success = fmt.Sprintf("Success! Your sentiment %q has been saved.", view.Current)
		}
	case StatusFailed:
		if !view.ChatMode {
			view.Error = errorf(MsgSentimentFailed)
		}
	}
	return view, nil
}

// SubmitSentiment saves the visitor's sentiment and returns the outcome. In
// form mode input must be one of SentimentChoices; in chat mode any
// non-blank text is accepted and the exchange is kept in the chat history.
func (c *Controller) SubmitSentiment(ctx context.Context, st session.State, input string) (string, error) {
	input = strings.TrimSpace(input)
	if c.ChatMode() {
		return c.submitChat(ctx, st, input)
	}

	choice := matchChoice(input)
	if choice == "" {
		return StatusMissing, nil
	}

	saved, err := c.save(ctx, st, choice)
	if err != nil {
		return "", err
	}
	if saved == "" {
		return StatusFailed, nil
	}
	return StatusSaved, nil
}

func (c *Controller) submitChat(ctx context.Context, st session.State, input string) (string, error) {
	if input == "" {
		return StatusMissing, nil
	}

	if err := st.AppendChat(model.ChatRoleUser, input); err != nil {
		return "", err
	}

	saved, err := c.save(ctx, st, input)
	if err != nil {
		return "", err
	}

	status, reply := StatusFailed, MsgChatApology
	if saved != "" {
		status, reply = StatusSaved, fmt.Sprintf("Thanks! I've noted your sentiment as %q.", saved)
	}
	if err := st.AppendChat(model.ChatRoleBot, reply); err != nil {
		return "", err
	}
	return status, nil
}

// save posts the sentiment and stores the echoed value. A remote failure
// yields an empty string and a nil error; only storage failures are returned.
func (c *Controller) save(ctx context.Context, st session.State, sentiment string) (string, error) {
	userID, err := st.EnsureUserID()
	if err != nil {
		return "", err
	}

	echoed, err := c.api.SaveSentiment(ctx, userID, sentiment)
	if err != nil {
		c.logger.Warn("save sentiment failed", "user_id", userID, "error", err)
		return "", nil
	}
	if echoed == "" {
		echoed = sentiment
	}
	if err := st.SetSentiment(echoed); err != nil {
		return "", err
	}
	return echoed, nil
}

func matchChoice(input string) string {
	for _, choice := range SentimentChoices {
		if strings.EqualFold(choice, input) {
			return choice
		}
	}
	return ""
}
