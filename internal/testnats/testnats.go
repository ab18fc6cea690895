// Package testnats provides the broker used by messaging tests. The broker
// runs as a nats:2.10-alpine testcontainer and needs Docker, so tests calling
// Setup skip themselves unless TESTNATS=1 is set. Tests sharing the broker
// cannot run in parallel.
package testnats

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	shared     *Broker
	sharedOnce sync.Once
)

type Broker struct {
	Container testcontainers.Container
	URL       string
}

// Setup returns a broker shared by every test in the process, starting the
// container on first use.
func Setup(t *testing.T) *Broker {
	t.Helper()

	if os.Getenv("TESTNATS") == "" {
		t.Skip("set TESTNATS=1 to run tests against a NATS container")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10-alpine",
				ExposedPorts: []string{"4222/tcp"},
				WaitingFor:   wait.ForListeningPort("4222/tcp"),
			},
			Started: true,
		})
		require.NoError(t, err)

		host, err := container.Host(ctx)
		require.NoError(t, err)

		port, err := container.MappedPort(ctx, "4222")
		require.NoError(t, err)

		shared = &Broker{
			Container: container,
			URL:       "nats://" + host + ":" + port.Port(),
		}
	})

	require.NotNil(t, shared, "NATS container failed to start in an earlier test")
	return shared
}

// Connect opens a client connection closed automatically when the test ends.
func (b *Broker) Connect(t *testing.T) *nats.Conn {
	t.Helper()

	conn, err := nats.Connect(b.URL)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })

	return conn
}
