package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/remindkit/remindkit/internal/errors"
	"github.com/remindkit/remindkit/reminder"
)

var remindWait time.Duration

var remindCmd = &cobra.Command{
	Use:   "remind <text...>",
	Short: "Create a reminder and watch it fire",
	Long: `Creates a reminder against an in-memory store and runs the
scheduler until the notification is dispatched to the console.

Examples:
  remindkit remind "30s stretch"
  remindkit remind "2m water the plants"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().DurationVar(&remindWait, "wait", 2*time.Minute, "maximum time to wait for dispatch")
}

// consoleNotifier prints notifications instead of talking to a homeserver.
type consoleNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *consoleNotifier) SendMessage(ctx context.Context, roomID id.RoomID, content *event.MessageEventContent) (id.EventID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	fmt.Printf("[%s] %s\n", roomID, content.Body)
	return id.EventID(fmt.Sprintf("$console-%d", n.count)), nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	store := reminder.NewMemoryStore()
	svc := reminder.NewService(store, &consoleNotifier{})
	svc.SetTimezone(p.Location())

	ctx := context.Background()
	created, err := svc.Create(ctx, &reminder.CreateRequest{
		RoomID:  "!console:localhost",
		EventID: "$console-cmd",
		Sender:  "@you:localhost",
		Text:    strings.Join(args, " "),
	})
	if err != nil {
		return err
	}

	fmt.Println(svc.Confirmation(created))

	wait := time.Until(created.TriggerAt)
	if wait > remindWait {
		fmt.Printf("trigger %s is beyond --wait, not waiting\n", created.TriggerAt.Format(time.RFC3339))
		return nil
	}

	scheduler := reminder.NewScheduler(svc, reminder.SchedulerConfig{Interval: time.Second})
	processedChan := scheduler.EnableTestMode()
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	deadline := time.After(wait + 10*time.Second)
	for {
		select {
		case processed := <-processedChan:
			if processed > 0 {
				return nil
			}
		case <-deadline:
			return errors.DispatchFailed("reminder never fired", nil)
		}
	}
}
