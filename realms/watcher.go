package realms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"k8s.io/klog/v2"

	"realms-cli/governance"
)

const (
	// EventAny receives every change.
	EventAny = "*"
	// EventRemoved receives accounts that were closed.
	EventRemoved = "removed"
)

// AccountChange is a governance account update seen by the watcher. Account is nil
// when the account was removed or could not be decoded, in which case Err is set.
type AccountChange struct {
	Address solana.PublicKey
	Slot    uint64
	Type    governance.AccountType
	Account governance.Account
	Removed bool
	Err     error
}

type Handler func(change AccountChange)

type handlerEntry struct {
	id      string
	handler Handler
}

// Emitter dispatches account changes to handlers registered per event name. Event
// names are account type names such as "ProposalV2", EventRemoved or EventAny.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	nextID   int
}

func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string][]handlerEntry)}
}

// On registers handler for event and returns an id for Off.
func (e *Emitter) On(event string, handler Handler) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := strconv.Itoa(e.nextID)
	e.handlers[event] = append(e.handlers[event], handlerEntry{id: id, handler: handler})
	return id
}

// Off removes the given handlers of event, or all of them when no id is given.
func (e *Emitter) Off(event string, ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ids) == 0 {
		delete(e.handlers, event)
		return
	}
	e.handlers[event] = slices.DeleteFunc(e.handlers[event], func(entry handlerEntry) bool {
		return slices.Contains(ids, entry.id)
	})
}

// Emit calls the handlers of event and the EventAny handlers, in registration order.
func (e *Emitter) Emit(event string, change AccountChange) {
	e.mu.RLock()
	var targets []Handler
	for _, entry := range e.handlers[event] {
		targets = append(targets, entry.handler)
	}
	if event != EventAny {
		for _, entry := range e.handlers[EventAny] {
			targets = append(targets, entry.handler)
		}
	}
	e.mu.RUnlock()

	for _, handler := range targets {
		handler(change)
	}
}

// Watcher streams governance program account changes over websocket.
type Watcher struct {
	*Emitter
	Endpoint  string
	ProgramID solana.PublicKey
	Filters   []rpc.RPCFilter
}

// NewWatcher creates a watcher on the client's websocket endpoint.
func (c *Client) NewWatcher(filters ...rpc.RPCFilter) (*Watcher, error) {
	if c.Config.WSEndpoint == "" {
		return nil, errors.New("watching requires a websocket endpoint")
	}
	return &Watcher{
		Emitter:   NewEmitter(),
		Endpoint:  c.Config.WSEndpoint,
		ProgramID: c.Config.Program.ID,
		Filters:   filters,
	}, nil
}

// Run subscribes and emits changes until ctx is cancelled or the subscription fails.
func (w *Watcher) Run(ctx context.Context) error {
	client, err := ws.Connect(ctx, w.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer client.Close()

	sub, err := client.ProgramSubscribeWithOpts(w.ProgramID, rpc.CommitmentConfirmed, solana.EncodingBase64, w.Filters)
	if err != nil {
		return fmt.Errorf("failed to subscribe to program %s: %w", w.ProgramID, err)
	}
	defer sub.Unsubscribe()
	klog.Infof("watching governance program %s", w.ProgramID)

	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("subscription closed: %w", err)
		}
		w.handle(result.Context.Slot, result.Value)
	}
}

func (w *Watcher) handle(slot uint64, keyed rpc.KeyedAccount) {
	change := AccountChange{Address: keyed.Pubkey, Slot: slot}

	var data []byte
	if keyed.Account != nil {
		data = keyed.Account.Data.GetBinary()
	}
	if keyed.Account == nil || keyed.Account.Lamports == 0 || len(data) == 0 {
		change.Removed = true
		w.Emit(EventRemoved, change)
		return
	}

	change.Type, _ = governance.AccountTypeOf(data)
	change.Account, change.Err = governance.DecodeAccount(data)
	if change.Err != nil {
		klog.V(2).Infof("undecodable change of %s at slot %d: %v", change.Address, slot, change.Err)
	}
	w.Emit(change.Type.String(), change)
}
