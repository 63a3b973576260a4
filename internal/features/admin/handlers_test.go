package admin

import (
	"context"
	"fmt"
	"testing"

	"gorodok.ru/karma-bot/internal/features/members"
)

// fakeDirectory подменяет реестр участников в тестах прав доступа.
type fakeDirectory struct {
	member *members.Member
	err    error
}

func (f *fakeDirectory) GetByUserID(_ context.Context, _ int64) (*members.Member, error) {
	return f.member, f.err
}

// Обработчик с nil-сервисами: любое обращение к заявкам, активностям или
// Telegram после проверки прав уронит тест паникой.
func newBareHandler(dir memberDirectory) *Handler {
	return NewHandler(nil, dir, nil, nil, nil)
}

func TestHandleApprove_NonAdminIgnored(t *testing.T) {
	h := newBareHandler(&fakeDirectory{member: &members.Member{UserID: 10, IsAdmin: false}})
	h.HandleApprove(context.Background(), 10, 10, []string{"какой-то-id"})
}

func TestHandleReject_NonAdminIgnored(t *testing.T) {
	h := newBareHandler(&fakeDirectory{member: &members.Member{UserID: 10, IsAdmin: false}})
	h.HandleReject(context.Background(), 10, 10, []string{"какой-то-id"})
}

func TestHandlePenalty_NonAdminIgnored(t *testing.T) {
	h := newBareHandler(&fakeDirectory{member: &members.Member{UserID: 10, IsAdmin: false}})
	h.HandlePenalty(context.Background(), 10, 10, 20, []string{"спам"})
}

func TestHandleApprove_UnknownUserIgnored(t *testing.T) {
	h := newBareHandler(&fakeDirectory{err: fmt.Errorf("участник не найден")})
	h.HandleApprove(context.Background(), 10, 10, []string{"какой-то-id"})
}

func TestHandleAdminMessage_NonAdminNotHandled(t *testing.T) {
	h := newBareHandler(&fakeDirectory{member: &members.Member{UserID: 10, IsAdmin: false}})
	if handled := h.HandleAdminMessage(context.Background(), 10, 10, "!заявки"); handled {
		t.Error("сообщение обычного участника не должно обрабатываться админ-панелью")
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		dir  memberDirectory
		want bool
	}{
		{"админ", &fakeDirectory{member: &members.Member{IsAdmin: true}}, true},
		{"обычный участник", &fakeDirectory{member: &members.Member{IsAdmin: false}}, false},
		{"не найден", &fakeDirectory{err: fmt.Errorf("нет такого")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBareHandler(tt.dir)
			if got := h.isAdmin(context.Background(), 1); got != tt.want {
				t.Errorf("isAdmin = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}
