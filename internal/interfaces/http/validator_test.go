package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
)

func TestValidWindow(t *testing.T) {
	require.True(t, ValidWindow(entities.Window{Weekday: 1, Start: "08:00", End: "18:00"}))
	require.True(t, ValidWindow(entities.Window{Weekday: 6, Start: "22:00", End: "02:00"})) // crosses midnight
	require.False(t, ValidWindow(entities.Window{Weekday: 7, Start: "08:00", End: "18:00"}))
	require.False(t, ValidWindow(entities.Window{Weekday: 1, Start: "8:00", End: "18:00"}))
	require.False(t, ValidWindow(entities.Window{Weekday: 1, Start: "08:00", End: "24:00"}))
	require.False(t, ValidWindow(entities.Window{Weekday: 1, Start: "", End: ""}))
}

func TestValidChatID(t *testing.T) {
	require.True(t, ValidChatID("573001112233@s.whatsapp.net"))
	require.True(t, ValidChatID("573001112233"))
	require.False(t, ValidChatID("abc"))
	require.False(t, ValidChatID("573001112233@"))
	require.False(t, ValidChatID("'; DROP TABLE conversations;--"))
}
