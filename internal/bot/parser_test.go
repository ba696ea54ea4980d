package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name     string
		text     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{"слеш-команда", "/balance", "balance", nil, true},
		{"восклицательный знак", "!баланс", "баланс", nil, true},
		{"точка", ".топ", "топ", nil, true},
		{"аргументы", "/send @bob 50", "send", []string{"@bob", "50"}, true},
		{"упоминание бота срезается", "/balance@nook_bot", "balance", nil, true},
		{"регистр нормализуется", "/BALANCE", "balance", nil, true},
		{"пробелы вокруг", "  /balance  ", "balance", nil, true},
		{"обычный текст", "привет всем", "", nil, false},
		{"пустая строка", "", "", nil, false},
		{"только префикс", "/", "", nil, false},
		{"префикс и пробелы", "!   ", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
