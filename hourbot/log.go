package hourbot

// Logging convention in the `hourbot` package:
// Info:
//     essential events for abnormal behavior. This level should be silent on
//     normal operation, with the exception of one time (infrequent)
//     initialization data that is useful for monitoring
//     this includes:
//     - connect, disconnect, and auth errors
//     - subscriber panics suppressed for partial operation
// V(1):
//     infrequent lifecycle events - attach, detach, window finalize
// V(2):
//     frequent events - per-command receive, fan-out, send, drop -
//     prefer the prometheus counters in metrics.go for statistics and use
//     these only when tracing

// log tags used with glog:
//     [c]  client connection lifecycle
//     [cr] client read loop
//     [cs] client send path
//     [d]  diverter
//     [z]  summarizer windows
