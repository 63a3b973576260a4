package bot

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name      string
		text      string
		wantCmd   string
		wantArgs  []string
		isCommand bool
	}{
		{"восклицательный знак", "!карма", "карма", nil, true},
		{"точка", ".топ месяц", "топ", []string{"месяц"}, true},
		{"слэш", "/help", "help", nil, true},
		{"регистр команды", "!ТОП", "топ", nil, true},
		{"аргументы", "!обменять 3", "обменять", []string{"3"}, true},
		{"пробелы по краям", "  !карма  ", "карма", nil, true},
		{"обычный текст", "спасибо за помощь", "", nil, false},
		{"только префикс", "!", "", nil, false},
		{"пустая строка", "", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			if ok != tt.isCommand {
				t.Fatalf("ParseCommand(%q): isCommand = %v, ожидалось %v", tt.text, ok, tt.isCommand)
			}
			if cmd != tt.wantCmd {
				t.Errorf("ParseCommand(%q): cmd = %q, ожидалось %q", tt.text, cmd, tt.wantCmd)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("ParseCommand(%q): args = %v, ожидалось %v", tt.text, args, tt.wantArgs)
			}
		})
	}
}
