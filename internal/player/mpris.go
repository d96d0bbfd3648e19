package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"karolbroda.com/lyricbar/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	propertiesIface  = "org.freedesktop.DBus.Properties"
	propertiesGet    = propertiesIface + ".Get"
	propertiesSignal = propertiesIface + ".PropertiesChanged"
)

var ErrNotRunning = errors.New("player not running")

// MPRIS follows one MPRIS2 player on the session bus.
type MPRIS struct {
	bus     *dbus.Conn
	service string
	log     zerolog.Logger

	signalChan chan *dbus.Signal
	stopChan   chan struct{}
	stopOnce   sync.Once
	eventChan  chan Event
}

func NewMPRIS(bus *dbus.Conn, mprisService string, log zerolog.Logger) (*MPRIS, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}

	return &MPRIS{
		bus:       bus,
		service:   mprisService,
		log:       log.With().Str("component", "player").Str("service", mprisService).Logger(),
		stopChan:  make(chan struct{}),
		eventChan: make(chan Event, 16),
	}, nil
}

func (m *MPRIS) Service() string { return m.service }

// Start subscribes to PropertiesChanged broadcasts from the player.
func (m *MPRIS) Start() error {
	m.signalChan = make(chan *dbus.Signal, 10)
	m.bus.Signal(m.signalChan)

	err := m.bus.AddMatchSignal(
		dbus.WithMatchSender(m.service),
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchObjectPath(mprisPath),
	)
	if err != nil {
		return fmt.Errorf("failed to add properties match: %w", err)
	}

	go m.signalLoop()

	return nil
}

func (m *MPRIS) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		if m.signalChan != nil {
			m.bus.RemoveSignal(m.signalChan)
		}
	})
}

func (m *MPRIS) Events() <-chan Event {
	return m.eventChan
}

func (m *MPRIS) Running(ctx context.Context) (bool, error) {
	var hasOwner bool
	err := m.bus.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, m.service).Store(&hasOwner)
	if err != nil {
		return false, fmt.Errorf("failed to query name owner: %w", err)
	}
	return hasOwner, nil
}

func (m *MPRIS) Status(ctx context.Context) (Status, error) {
	running, err := m.Running(ctx)
	if err != nil {
		return Status{}, err
	}
	if !running {
		return Status{}, nil
	}

	status := Status{Running: true}

	playback, err := m.property(ctx, mprisPlayerIface, "PlaybackStatus")
	if err != nil {
		return status, err
	}
	state, _ := playback.Value().(string)
	status.Playing = state == StatePlaying

	meta, err := m.property(ctx, mprisPlayerIface, "Metadata")
	if err != nil {
		return status, err
	}
	metadata, ok := meta.Value().(map[string]dbus.Variant)
	if !ok {
		return status, fmt.Errorf("unexpected metadata type %T", meta.Value())
	}
	status.Track = trackFromMetadata(metadata)

	return status, nil
}

func (m *MPRIS) Position(ctx context.Context) (time.Duration, error) {
	prop, err := m.property(ctx, mprisPlayerIface, "Position")
	if err != nil {
		return 0, err
	}

	positionMicroseconds, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}
	if positionMicroseconds < 0 {
		return 0, nil
	}

	return time.Duration(positionMicroseconds) * time.Microsecond, nil
}

func (m *MPRIS) property(ctx context.Context, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	obj := m.bus.Object(m.service, mprisPath)
	if err := obj.CallWithContext(ctx, propertiesGet, 0, iface, name).Store(&v); err != nil {
		if isServiceUnknown(err) {
			return v, ErrNotRunning
		}
		return v, fmt.Errorf("failed to get %s property: %w", name, err)
	}
	return v, nil
}

func isServiceUnknown(err error) bool {
	const serviceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == serviceUnknown
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == serviceUnknown
	}
	return false
}

func (m *MPRIS) signalLoop() {
	for {
		select {
		case sig, ok := <-m.signalChan:
			if !ok {
				return
			}
			if ev, ok := eventFromSignal(sig); ok {
				m.emitEvent(ev)
			}
		case <-m.stopChan:
			return
		}
	}
}

func (m *MPRIS) emitEvent(ev Event) {
	select {
	case m.eventChan <- ev:
	default:
		m.log.Warn().Msg("player event dropped, consumer too slow")
	}
}

// eventFromSignal maps a PropertiesChanged signal from the player interface
// to an Event. Signals from other interfaces are ignored.
func eventFromSignal(sig *dbus.Signal) (Event, bool) {
	if sig == nil || sig.Name != propertiesSignal || len(sig.Body) < 2 {
		return Event{}, false
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerIface {
		return Event{}, false
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return Event{}, false
	}

	var ev Event
	found := false

	if v, exists := changedProps["PlaybackStatus"]; exists {
		if status, ok := v.Value().(string); ok {
			ev.State = status
			found = true
		}
	}

	if v, exists := changedProps["Metadata"]; exists {
		if metadata, ok := v.Value().(map[string]dbus.Variant); ok {
			ev.Track = trackFromMetadata(metadata)
			found = true
		}
	}

	return ev, found
}

func trackFromMetadata(metadata map[string]dbus.Variant) track.Info {
	return track.Info{
		ID:           track.IDFromURI(extractString(metadata, "mpris:trackid")),
		Name:         extractString(metadata, "xesam:title"),
		Artist:       extractArtist(metadata, "xesam:artist"),
		Album:        extractString(metadata, "xesam:album"),
		ArtworkURL:   extractString(metadata, "mpris:artUrl"),
		DurationSecs: extractDurationSeconds(metadata, "mpris:length"),
	}
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case string:
		return typed
	case dbus.ObjectPath:
		return string(typed)
	default:
		return ""
	}
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		return strings.Join(typed, ", ")
	case string:
		return typed
	default:
		return ""
	}
}

func extractDurationSeconds(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return typed / 1_000_000
	case uint64:
		return int64(typed / 1_000_000)
	default:
		return 0
	}
}

// ListPlayers returns the MPRIS services currently on the bus.
func ListPlayers(ctx context.Context, bus *dbus.Conn) ([]string, error) {
	var names []string
	err := bus.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	var services []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			services = append(services, name)
		}
	}
	return services, nil
}

// Identity is the player's human readable name, or "" if unavailable.
func Identity(ctx context.Context, bus *dbus.Conn, service string) string {
	var v dbus.Variant
	obj := bus.Object(service, mprisPath)
	if err := obj.CallWithContext(ctx, propertiesGet, 0, mprisRootIface, "Identity").Store(&v); err != nil {
		return ""
	}
	identity, _ := v.Value().(string)
	return identity
}
