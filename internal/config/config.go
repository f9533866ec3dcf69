// internal/config/config.go

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"achotel/internal/types"
)

// Config 系统配置
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Scheduler struct {
		MaxServices int `yaml:"max_services"` // 最大服务对象数
		WaitBudget  int `yaml:"wait_budget"`  // 时间片(秒)
	} `yaml:"scheduler"`

	// 房间状态落盘周期(秒)
	SnapshotInterval int `yaml:"snapshot_interval"`

	LogLevel string `yaml:"log_level"`

	Rooms RoomLayout `yaml:"rooms"`
}

// RoomLayout 房间布局: 每层 RoomsPerFloor 间，房号 = 层号 + 两位序号
type RoomLayout struct {
	Floors        int                `yaml:"floors"`
	RoomsPerFloor int                `yaml:"rooms_per_floor"`
	FloorPrices   map[int]float64    `yaml:"floor_prices"` // 每层每晚房价
	Deposit       float64            `yaml:"deposit"`
	DefaultTemp   float64            `yaml:"default_temp"`   // 默认环境温度
	TargetTemp    float64            `yaml:"target_temp"`    // 默认目标温度
	InitialTemps  map[string]float64 `yaml:"initial_temps"`  // 指定房间的环境温度
}

// Default 返回默认配置 (验收用例的房间布局)
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Database.Path = "hotel.db"
	cfg.Scheduler.MaxServices = types.DefaultMaxServices
	cfg.Scheduler.WaitBudget = types.DefaultWaitBudget
	cfg.SnapshotInterval = 10
	cfg.LogLevel = "info"
	cfg.Rooms = RoomLayout{
		Floors:        4,
		RoomsPerFloor: 10,
		FloorPrices:   map[int]float64{1: 100, 2: 150, 3: 200, 4: 250},
		Deposit:       100,
		DefaultTemp:   28.0,
		TargetTemp:    25.0,
		InitialTemps: map[string]float64{
			// 制冷测试房间
			"101": 32.0, "102": 28.0, "103": 30.0, "104": 29.0, "105": 35.0,
			// 制热测试房间
			"106": 10.0, "107": 15.0, "108": 18.0, "109": 12.0, "110": 14.0,
		},
	}
	return cfg
}

// Load 从文件加载配置，文件不存在时使用默认配置
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scheduler.MaxServices <= 0 {
		return fmt.Errorf("max_services 必须大于 0")
	}
	if c.Scheduler.WaitBudget <= 0 {
		return fmt.Errorf("wait_budget 必须大于 0")
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = 10
	}
	if c.Rooms.Floors <= 0 || c.Rooms.RoomsPerFloor <= 0 {
		return fmt.Errorf("房间布局不合法")
	}
	return nil
}

// PriceForFloor 返回楼层房价，缺省 100
func (l RoomLayout) PriceForFloor(floor int) float64 {
	if p, ok := l.FloorPrices[floor]; ok {
		return p
	}
	return 100.0
}

// InitialTempFor 返回指定房间的环境温度
func (l RoomLayout) InitialTempFor(roomID string) float64 {
	if t, ok := l.InitialTemps[roomID]; ok {
		return t
	}
	return l.DefaultTemp
}
