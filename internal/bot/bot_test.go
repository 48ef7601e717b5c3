package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 4242

type fakeClient struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	sendErr  error
	stopped  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeClient) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeClient) StopReceivingUpdates() { f.stopped = true }

func (f *fakeClient) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

type fakeDashboard struct {
	summary models.Summary
	err     error
}

func (f fakeDashboard) Summary(context.Context) (models.Summary, error) {
	return f.summary, f.err
}

func summary() models.Summary {
	return models.Summary{
		VocabTotal:    10,
		VocabMastered: 2,
		BoxCounts:     map[int]int{1: 5, 2: 1, 3: 1, 4: 1, 5: 0, 6: 2},
		StatusCounts:  map[models.GrammarStatus]int{models.StatusUnseen: 3, models.StatusMastered: 1},
		GrammarTotal:  4,
		DueNow:        3,
	}
}

func command(chat int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chat},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func TestSendReminder(t *testing.T) {
	api := newFakeClient()
	b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{}, nil)

	require.NoError(t, b.SendReminder(context.Background(), 3))
	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, "You have 3 cards due for review. Open Vox to start a session.", msg.Text)

	api.sendErr = errors.New("network down")
	assert.Error(t, b.SendReminder(context.Background(), 1))
}

func TestReminderText(t *testing.T) {
	assert.Contains(t, ReminderText(1), "1 card due")
	assert.Contains(t, ReminderText(5), "5 cards due")
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("stats", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{summary: summary()}, nil)
		b.handleUpdate(ctx, command(chatID, "/stats"))
		require.Len(t, api.texts(), 1)
		assert.Contains(t, api.texts()[0], "Vocabulary: 2/10 mastered")
		assert.Contains(t, api.texts()[0], "Box 6: 2")
		assert.Contains(t, api.texts()[0], "Due now: 3")
	})

	t.Run("due", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{summary: summary()}, nil)
		b.handleUpdate(ctx, command(chatID, "/due"))
		assert.Equal(t, []string{ReminderText(3)}, api.texts())
	})

	t.Run("nothing due", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{}, nil)
		b.handleUpdate(ctx, command(chatID, "/due"))
		assert.Equal(t, []string{"Nothing is due. Come back later!"}, api.texts())
	})

	t.Run("summary failure", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{err: models.ErrStorage}, nil)
		b.handleUpdate(ctx, command(chatID, "/stats"))
		assert.Equal(t, []string{"Statistics are not available right now."}, api.texts())
	})

	t.Run("other chats are ignored", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{summary: summary()}, nil)
		b.handleUpdate(ctx, command(1, "/stats"))
		assert.Empty(t, api.sent)
	})

	t.Run("unknown command", func(t *testing.T) {
		api := newFakeClient()
		b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{}, nil)
		b.handleUpdate(ctx, command(chatID, "/learn"))
		assert.Equal(t, []string{"Unknown command. Use /start to see the commands."}, api.texts())
	})
}

func TestCallbackQuery(t *testing.T) {
	api := newFakeClient()
	b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{summary: summary()}, nil)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q1",
		Data:    "due",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}})

	assert.Len(t, api.requests, 1)
	assert.Equal(t, []string{ReminderText(3)}, api.texts())
}

func TestRunStopsOnCancel(t *testing.T) {
	api := newFakeClient()
	b := newBot(api, DefaultConfig("token", chatID), fakeDashboard{summary: summary()}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	api.updates <- command(chatID, "/due")
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return len(api.texts()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, api.stopped)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{}, fakeDashboard{}, nil)
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(nil).SendReminder(context.Background(), 2))
}
