package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/jlaffaye/ftp"
)

const anonymousUser = "anonymous"

func (c *Client) copyFTP(ctx context.Context, u *url.URL, w io.Writer, progress ProgressFunc) (int64, error) {
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "21")
	}
	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.timeout))
	if err != nil {
		return 0, fmt.Errorf("fetch: dial %s: %w", host, err)
	}
	defer conn.Quit()

	user, pass := anonymousUser, anonymousUser
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return 0, fmt.Errorf("fetch: login %s: %w", host, err)
	}

	total, err := conn.FileSize(u.Path)
	if err != nil {
		total = -1
	}
	resp, err := conn.Retr(u.Path)
	if err != nil {
		return 0, fmt.Errorf("fetch: retr %s: %w", u.Path, err)
	}
	defer resp.Close()
	return copyWithProgress(ctx, w, resp, total, progress)
}
