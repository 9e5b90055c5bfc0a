package reward

import (
	"errors"
	"sync"
	"time"
)

// Состояния просмотра. Completed конечное: из него нет переходов,
// и достигается оно не более одного раза.
const (
	StateLoading   = "loading"
	StateCounting  = "counting"
	StateCompleted = "completed"
	StateError     = "error"
)

// События просмотра, приходящие от плеера.
const (
	EventContentReady    = "content_ready"
	EventPlaybackStarted = "playback_started"
	EventPlaybackEnded   = "playback_ended"
	EventLoadFailed      = "load_failed"
	EventRetry           = "retry"
)

// Ошибки машины состояний.
var (
	ErrBadTransition     = errors.New("event not allowed in current state")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrCloseNeedsConfirm = errors.New("close before completion requires confirmation")
)

// Player машина состояний одного просмотра рекламы. Отсчёт запускается
// готовностью контента и идёт по абсолютному дедлайну настенных часов:
// сворачивание приложения или замедление таймеров не растягивает
// просмотр. Просмотр завершается по дедлайну или по нативному окончанию
// ролика, что наступит раньше.
type Player struct {
	mu        sync.Mutex
	state     string
	source    AdSource
	duration  time.Duration
	deadline  time.Time
	createdAt time.Time
	now       func() time.Time
}

// NewPlayer создаёт просмотр ролика по адресу rawURL с заданной
// длительностью отсчёта. Пустой адрес сразу даёт состояние error.
func NewPlayer(rawURL string, duration time.Duration) *Player {
	p := &Player{
		state:    StateLoading,
		duration: duration,
		now:      time.Now,
	}
	p.createdAt = p.now()
	source, err := ResolveSource(rawURL)
	if err != nil {
		p.state = StateError
		return p
	}
	p.source = source
	return p
}

// State возвращает текущее состояние, завершая отсчёт, если дедлайн прошёл.
func (p *Player) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()
	return p.state
}

// Source возвращает выбранный способ воспроизведения.
func (p *Player) Source() AdSource {
	return p.source
}

// Remaining возвращает оставшееся время отсчёта.
func (p *Player) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()
	if p.state != StateCounting {
		return 0
	}
	return p.deadline.Sub(p.now())
}

// Apply применяет событие плеера и возвращает новое состояние.
func (p *Player) Apply(event string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()

	switch event {
	case EventContentReady:
		// Единственный сигнал, запускающий отсчёт: встраиваемый фрейм
		// ничего не сообщает о старте воспроизведения, поэтому дедлайн
		// фиксируется по готовности контента.
		if p.state != StateLoading {
			return p.state, ErrBadTransition
		}
		p.state = StateCounting
		p.deadline = p.now().Add(p.duration)
	case EventPlaybackStarted:
		// Информационное событие нативного плеера, отсчёт уже идёт.
		if p.state != StateCounting {
			return p.state, ErrBadTransition
		}
	case EventPlaybackEnded:
		// Нативный конец ролика завершает просмотр досрочно. Конец
		// ролика известен только у прямых видеофайлов.
		if p.state != StateCounting || p.source.Kind != SourceDirectFile {
			return p.state, ErrBadTransition
		}
		p.state = StateCompleted
	case EventLoadFailed:
		if p.state == StateCompleted {
			return p.state, ErrBadTransition
		}
		p.state = StateError
	case EventRetry:
		if p.state != StateError {
			return p.state, ErrBadTransition
		}
		p.state = StateLoading
	default:
		return p.state, ErrUnknownEvent
	}
	return p.state, nil
}

// RequestClose обрабатывает попытку закрыть просмотр. После завершения
// закрытие свободное; до завершения требуется подтверждение.
func (p *Player) RequestClose(confirmed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh()
	if p.state == StateCompleted || p.state == StateError {
		return nil
	}
	if !confirmed {
		return ErrCloseNeedsConfirm
	}
	return nil
}

// refresh переводит отсчёт в completed, когда дедлайн прошёл.
// Вызывается под мьютексом.
func (p *Player) refresh() {
	if p.state == StateCounting && !p.now().Before(p.deadline) {
		p.state = StateCompleted
	}
}
