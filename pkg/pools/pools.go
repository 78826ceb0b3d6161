// Package pools provides object pooling for two hot paths: pkg/store's
// key/value encoding, run on every PostPayment and GetPaymentsSummary
// call, and pkg/ipc's gob+snappy frame codec used by the multi-process
// IPC Fabric. Both allocate a small buffer per call; size-class
// pooling keeps that off the steady-state allocation path.
//
//   - BytePool: size-class based byte slice pooling
//   - BufferBuilder: buffer construction with pooling
package pools
