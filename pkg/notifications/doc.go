// Package notifications turns a notify request into live, buffered and
// side-channel deliveries.
//
// A Manager persists each notification through a Storage, then hands it to
// the Hub. The Hub keeps at most one live Connection per recipient; when
// the recipient is offline the notification waits in the PendingQueue and
// is flushed, in order, on the next Register. Side channels (mail, text,
// push) run concurrently through Dispatcher implementations and never
// affect the result of Create or each other. Every outcome is reported to
// an OutcomeSink.
//
// Lifecycle changes (read, archive) follow a fixed transition table and are
// idempotent; stores keep the first read and archive timestamps.
//
// Basic wiring:
//
//	hub := notifications.NewHub(cfg, notifications.WithHubLogger(log))
//	defer hub.Close()
//
//	mgr := notifications.NewManager(notifications.NewMemoryStorage(), hub,
//		notifications.WithDispatcher(notifications.NewMailDispatcher(mailer, "Modern Men")),
//		notifications.WithManagerLogger(log),
//	)
//	defer mgr.Close()
//
//	n, err := mgr.Create(ctx, notifications.AppointmentReminder("u1", "Sam", "Friday 3pm"))
package notifications
