// internal/monitor/monitor.go

package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"achotel/internal/events"
	"achotel/internal/logger"
)

// QueueSource 队列长度数据源
type QueueSource interface {
	QueueLengths() (service int, waiting int)
}

// Monitor 订阅调度事件维护计数器，并周期采样队列长度。
type Monitor struct {
	mu       sync.Mutex
	source   QueueSource
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	registry *prometheus.Registry

	serviceStarts prometheus.Counter
	preemptions   prometheus.Counter
	completions   prometheus.Counter
	waitEnqueues  prometheus.Counter
	checkIns      prometheus.Counter
	checkOuts     prometheus.Counter

	serviceGauge prometheus.Gauge
	waitingGauge prometheus.Gauge
}

// New 创建监控器并注册指标
func New(source QueueSource, bus *events.EventBus, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	m := &Monitor{
		source:   source,
		interval: interval,
		stopChan: make(chan struct{}),
		registry: prometheus.NewRegistry(),

		serviceStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_service_starts_total",
			Help: "进入服务队列的总次数",
		}),
		preemptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_preemptions_total",
			Help: "服务对象被换出的总次数",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_target_reached_total",
			Help: "达到目标温度释放服务的总次数",
		}),
		waitEnqueues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_wait_enqueues_total",
			Help: "首次进入等待队列的总次数",
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_check_ins_total",
			Help: "入住总次数",
		}),
		checkOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achotel_check_outs_total",
			Help: "退房总次数",
		}),
		serviceGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "achotel_service_queue_length",
			Help: "当前服务队列长度",
		}),
		waitingGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "achotel_wait_queue_length",
			Help: "当前等待队列长度",
		}),
	}
	m.registry.MustRegister(
		m.serviceStarts, m.preemptions, m.completions,
		m.waitEnqueues, m.checkIns, m.checkOuts,
		m.serviceGauge, m.waitingGauge,
	)

	bus.Subscribe(events.EventServiceStart, func(events.Event) { m.serviceStarts.Inc() })
	bus.Subscribe(events.EventServicePreempted, func(events.Event) { m.preemptions.Inc() })
	bus.Subscribe(events.EventTargetReached, func(events.Event) { m.completions.Inc() })
	bus.Subscribe(events.EventEnterWaitQueue, func(events.Event) { m.waitEnqueues.Inc() })
	bus.Subscribe(events.EventRoomCheckIn, func(events.Event) { m.checkIns.Inc() })
	bus.Subscribe(events.EventRoomCheckOut, func(events.Event) { m.checkOuts.Inc() })

	// 调试级事件追踪
	bus.SubscribeAll(func(e events.Event) {
		logger.Debug("[Event] %s 房间 %s", events.EventNames[e.Type], e.RoomID)
	})

	return m
}

// Start 启动周期采样
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-m.stopChan:
				return
			}
		}
	}()
	logger.Info("监控采样已启动 (间隔 %v)", m.interval)
}

// Stop 停止采样
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Monitor) sample() {
	m.mu.Lock()
	defer m.mu.Unlock()
	service, waiting := m.source.QueueLengths()
	m.serviceGauge.Set(float64(service))
	m.waitingGauge.Set(float64(waiting))
}

// Handler 暴露 prometheus 指标端点
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
