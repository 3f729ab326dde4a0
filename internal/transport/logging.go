package transport

import (
	"log"
)

// LoggingTransport implements the Transport interface by logging data to the console.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Println("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data to the standard logger.
func (lt *LoggingTransport) Send(data interface{}) error {
	log.Printf("LOG_TRANSPORT: %+v", data)
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	log.Println("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
