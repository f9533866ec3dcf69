package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Scheduler.MaxServices)
	assert.Equal(t, 120, cfg.Scheduler.WaitBudget)
	assert.Equal(t, 4, cfg.Rooms.Floors)
	assert.Equal(t, 10, cfg.Rooms.RoomsPerFloor)

	assert.Equal(t, 100.0, cfg.Rooms.PriceForFloor(1))
	assert.Equal(t, 250.0, cfg.Rooms.PriceForFloor(4))
	assert.Equal(t, 100.0, cfg.Rooms.PriceForFloor(9), "未配置楼层回退默认房价")

	assert.Equal(t, 32.0, cfg.Rooms.InitialTempFor("101"))
	assert.Equal(t, 10.0, cfg.Rooms.InitialTempFor("106"))
	assert.Equal(t, 28.0, cfg.Rooms.InitialTempFor("301"), "未配置房间使用默认环境温度")
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
scheduler:
  max_services: 2
  wait_budget: 30
rooms:
  floors: 1
  rooms_per_floor: 3
  deposit: 50
  default_temp: 26.0
  target_temp: 22.0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Scheduler.MaxServices)
	assert.Equal(t, 30, cfg.Scheduler.WaitBudget)
	assert.Equal(t, 1, cfg.Rooms.Floors)
	assert.Equal(t, 50.0, cfg.Rooms.Deposit)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  max_services: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
