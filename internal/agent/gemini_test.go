package agent

import (
	"testing"

	"github.com/lushmoments/lush-chat/internal/domain"
	"google.golang.org/genai"
)

func TestHistoryToContentsMapsSenderRoles(t *testing.T) {
	t.Parallel()

	history := []*domain.ChatMessage{
		{Sender: domain.SenderAIAgent, Message: "welcome"},
		{Sender: domain.SenderVisitor, Message: "hi"},
		{Sender: domain.SenderHumanAgent, Message: "hello from staff"},
	}

	contents := historyToContents(history)
	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(contents))
	}

	wantRoles := []genai.Role{genai.RoleModel, genai.RoleUser, genai.RoleModel}
	for i, want := range wantRoles {
		if genai.Role(contents[i].Role) != want {
			t.Errorf("Expected content %d role %q, got %q", i, want, contents[i].Role)
		}
		if len(contents[i].Parts) == 0 || contents[i].Parts[0].Text != history[i].Message {
			t.Errorf("Expected content %d text %q", i, history[i].Message)
		}
	}
}
