package integration

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/picker/internal/platform/db"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresUser  = "picker"
	postgresPass  = "picker"
	postgresDB    = "picker_reference"
)

// pgContainer is a throwaway Postgres started through the docker CLI. The
// container is created with --rm, so stopping it also removes it.
type pgContainer struct {
	id      string
	connStr string
}

func startPostgres(ctx context.Context) (*pgContainer, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("reserve port: %w", err)
	}

	out, err := exec.CommandContext(ctx, "docker", "run", "-d", "--rm",
		"--label", "picker.integration=true",
		"-p", "127.0.0.1:"+strconv.Itoa(port)+":5432",
		"-e", "POSTGRES_USER="+postgresUser,
		"-e", "POSTGRES_PASSWORD="+postgresPass,
		"-e", "POSTGRES_DB="+postgresDB,
		postgresImage,
	).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("docker run %s: %w: %s", postgresImage, err, strings.TrimSpace(string(out)))
	}

	connStr := fmt.Sprintf("postgres://%s:%s@127.0.0.1:%d/%s?sslmode=disable",
		postgresUser, postgresPass, port, postgresDB)
	pc := &pgContainer{id: strings.TrimSpace(string(out)), connStr: connStr}
	if err := pc.awaitReady(ctx, 30*time.Second); err != nil {
		pc.stop()
		return nil, err
	}
	return pc, nil
}

// awaitReady retries db.NewPool, which pings, until the server accepts
// queries or the deadline passes.
func (pc *pgContainer) awaitReady(ctx context.Context, within time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, within)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		var pool *pgxpool.Pool
		pool, lastErr = db.NewPool(ctx, db.PoolConfig{URL: pc.connStr, MaxConns: 1})
		if lastErr == nil {
			pool.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres in %s not ready after %s: %w", pc.id, within, lastErr)
		case <-ticker.C:
		}
	}
}

func (pc *pgContainer) stop() {
	_ = exec.Command("docker", "stop", "--time", "1", pc.id).Run()
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
