// Package fetch downloads WEW environmental data files from the SPRUCE FTP
// archive.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// Client downloads the per-plot data files of one deployment directory.
// The archive is public, so login is anonymous.
type Client struct {
	Addr    string        // host:port of the FTP server
	Dir     string        // deployment directory on the server
	Timeout time.Duration // dial timeout
}

// Pull downloads every CSV entry in the deployment directory into dest,
// creating dest if needed, and returns the local paths in server listing
// order.
func (c Client) Pull(ctx context.Context, dest string) ([]string, error) {
	conn, err := ftp.Dial(c.Addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.Timeout))
	if err != nil {
		return nil, fmt.Errorf("fetch: dial %s: %w", c.Addr, err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("fetch: login: %w", err)
	}
	if err := conn.ChangeDir(c.Dir); err != nil {
		return nil, fmt.Errorf("fetch: cd %s: %w", c.Dir, err)
	}

	entries, err := conn.List("")
	if err != nil {
		return nil, fmt.Errorf("fetch: list %s: %w", c.Dir, err)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !isDataFile(e) {
			continue
		}
		local := filepath.Join(dest, e.Name)
		if err := download(conn, e.Name, local); err != nil {
			return paths, err
		}
		log.Printf("Fetched %s (%d bytes)", e.Name, e.Size)
		paths = append(paths, local)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("fetch: no data files in %s", c.Dir)
	}
	return paths, nil
}

func download(conn *ftp.ServerConn, name, local string) error {
	resp, err := conn.Retr(name)
	if err != nil {
		return fmt.Errorf("fetch: retrieve %s: %w", name, err)
	}
	defer resp.Close()

	f, err := os.Create(local)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(local)
		return fmt.Errorf("fetch: download %s: %w", name, err)
	}
	return f.Close()
}

// isDataFile reports whether a listing entry is one of the deployment's CSV
// data files.
func isDataFile(e *ftp.Entry) bool {
	return e.Type == ftp.EntryTypeFile && strings.HasSuffix(strings.ToLower(e.Name), ".csv")
}
