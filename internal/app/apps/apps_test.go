package apps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type portCfg int

func (p portCfg) ApplyServerApp(app *ServerApp) error {
	app.Port = int(p)
	return nil
}

func (p portCfg) ApplyClientApp(app *ClientApp) error {
	app.Port = int(p)
	return nil
}

func TestNewServerAppDefaults(t *testing.T) {
	app, err := NewServerApp()
	require.NoError(t, err)
	require.NotZero(t, app.Port)
	require.Equal(t, 10*time.Second, app.SweepInterval)
	require.Equal(t, time.Second, app.SweepGrace)
}

func TestNewServerAppRejectsBadPort(t *testing.T) {
	_, err := NewServerApp(portCfg(-1))
	require.Error(t, err)
	_, err = NewServerApp(portCfg(70000))
	require.Error(t, err)
}

func TestNewClientAppRejectsBadPort(t *testing.T) {
	_, err := NewClientApp(portCfg(70000))
	require.Error(t, err)
}

func TestNewClientAppDefaults(t *testing.T) {
	app, err := NewClientApp()
	require.NoError(t, err)
	require.Equal(t, 50*time.Millisecond, app.FlushInterval)
	require.NotEmpty(t, app.Color)
}
