package discoverymanager

import (
	"fmt"
	"io"
	"sync"
	"time"

	"lanpeers/internal/peers"
	utiljson "lanpeers/internal/util/utilJson"

	"github.com/fatih/color"
)

type PrinterOptions struct {
	// JSON печатает каждый отчёт одним JSON-массивом
	JSON bool
	// Color включает раскраску текстового вывода
	Color bool
	// Self возвращает текущее имя процесса для заголовка
	Self func() string
}

// PeerPrinter печатает список живых пиров, реализует PeerSink.
type PeerPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	opts PrinterOptions

	header *color.Color
	name   *color.Color
	addr   *color.Color
	dim    *color.Color
}

func NewPeerPrinter(out io.Writer, opts PrinterOptions) *PeerPrinter {
	p := &PeerPrinter{
		out:    out,
		opts:   opts,
		header: color.New(color.FgYellow, color.Bold),
		name:   color.New(color.FgGreen, color.Bold),
		addr:   color.New(color.FgCyan),
		dim:    color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.header, p.name, p.addr, p.dim} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Report печатает отчёт. В текстовом режиме пустой список не печатается.
func (p *PeerPrinter) Report(now time.Time, alive []peers.Peer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.JSON {
		if alive == nil {
			alive = []peers.Peer{}
		}
		return utiljson.WriteLine(p.out, alive)
	}

	if len(alive) == 0 {
		return nil
	}

	self := "local"
	if p.opts.Self != nil {
		self = p.opts.Self()
	}
	if _, err := fmt.Fprintf(p.out, "%s %s\n",
		p.dim.Sprint(now.Format("15:04:05")),
		p.header.Sprintf("%s sees %d peer(s):", self, len(alive)),
	); err != nil {
		return err
	}

	for _, peer := range alive {
		if _, err := fmt.Fprintf(p.out, "  %s\tport=%d\taddr=%s\t%s\n",
			p.name.Sprint(peer.Name),
			peer.Port,
			p.addr.Sprint(peer.ID.String()),
			p.dim.Sprintf("seen %s ago", peer.Age(now).Round(100*time.Millisecond)),
		); err != nil {
			return err
		}
	}
	return nil
}
