package launch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	"github.com/sjy-dv/scmsg/scmsg/server"
	"github.com/sjy-dv/scmsg/scmsg/server/rpc"
	"google.golang.org/grpc"
)

var ErrAlreadyRunning = errors.New("launch:another scmsg instance holds the lock file")

type ScLauncher struct {
	Config    Config
	Registry  *server.Registry
	Endpoints []*server.Endpoint
	ErrLogCh  chan error

	adminServer *grpc.Server
	adminAddr   net.Addr
	fileLock    *flock.Flock
	errLogDone  chan struct{}
	ready       chan struct{}
}

var scLauncher atomic.Pointer[ScLauncher]

func GetScLauncher() *ScLauncher {
	return scLauncher.Load()
}

func LoadEnv() *ScLauncher {
	return loadEnv(os.Getenv)
}

func loadEnv(getenv func(string) string) *ScLauncher {
	sc := &ScLauncher{ready: make(chan struct{})}
	sc.Config = parseConfig(getenv)
	sc.setupLogger()
	log.Info(fmt.Sprintf("SCMSG Endpoints %v", sc.Config.Addresses))
	log.Info(fmt.Sprintf("SCMSG Read Buffer Size %d", sc.Config.ReadBufSize))
	log.Info(fmt.Sprintf("SCMSG Connection Limit %d", sc.Config.ConnLimit))
	log.Info(fmt.Sprintf("SCMSG Read/Write Timeout %v/%v", sc.Config.ReadTimeout, sc.Config.WriteTimeout))
	log.Info(fmt.Sprintf("SCMSG Accept Backoff %v..%v", sc.Config.AcceptBackoffMin, sc.Config.AcceptBackoffMax))
	log.Info(fmt.Sprintf("SCMSG KeepAlive Period %v", sc.Config.KeepAlivePeriod))
	if sc.Config.AdminEnabled() {
		log.Info(fmt.Sprintf("SCMSG Admin Address %s", sc.Config.AdminAddr))
	} else {
		log.Info("SCMSG Admin Service Disabled")
	}
	log.Info(fmt.Sprintf("SCMSG Lock File %s", sc.Config.LockFile))
	return sc
}

func (sc *ScLauncher) setupLogger() {
	log.SetLevel(sc.Config.LogLevel)
	log.SetColor(sc.Config.LogColor)
}

// Ready is closed once Start has bound every endpoint and the admin
// listener.
func (sc *ScLauncher) Ready() <-chan struct{} {
	return sc.ready
}

// AdminAddr is the bound admin listener address, nil when the admin
// service is disabled or not started.
func (sc *ScLauncher) AdminAddr() net.Addr {
	return sc.adminAddr
}

// Start takes the instance lock, binds every configured address, starts
// the accept loops and the admin service.
func (sc *ScLauncher) Start() error {
	log.Info("This System is dependent on ", runtime.Version(), " version.")
	if err := os.MkdirAll(filepath.Dir(sc.Config.LockFile), os.ModePerm); err != nil {
		return err
	}
	fileLock := flock.New(sc.Config.LockFile)
	hold, err := fileLock.TryLock()
	if err != nil {
		return err
	}
	if !hold {
		return ErrAlreadyRunning
	}
	sc.fileLock = fileLock

	sc.ErrLogCh = make(chan error, len(sc.Config.Addresses))
	sc.errLogDone = make(chan struct{})
	go sc.activeErrorLog(sc.ErrLogCh, sc.errLogDone)

	sc.Registry = server.NewRegistry(sc.Config.Options()...)
	started := make(map[*server.Endpoint]bool)
	for _, addr := range sc.Config.Addresses {
		ep, err := sc.Registry.Acquire(addr)
		if err != nil {
			sc.Shutdown()
			return err
		}
		sc.Endpoints = append(sc.Endpoints, ep)
		// a repeated address shares the already running endpoint
		if started[ep] {
			continue
		}
		started[ep] = true
		go func() {
			if err := ep.Run(); err != nil {
				sc.ErrLogCh <- fmt.Errorf("endpoint %s:%w", ep.Addr(), err)
			}
		}()
	}

	if sc.Config.AdminEnabled() {
		srv, addr, err := rpc.ServeRpc(sc.Config.AdminAddr, sc.Registry)
		if err != nil {
			sc.Shutdown()
			return err
		}
		sc.adminServer, sc.adminAddr = srv, addr
	}
	scLauncher.Store(sc)
	sc.ascii()
	select {
	case <-sc.ready:
	default:
		close(sc.ready)
	}
	return nil
}

// Launch starts the system and blocks until ctx is done, then shuts down.
func (sc *ScLauncher) Launch(ctx context.Context) error {
	if err := sc.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info("SCMSG shutdown requested")
	sc.Shutdown()
	return nil
}

// Shutdown releases every claim taken by Start, waits up to ShutdownGrace
// for live connections to finish, then closes the rest.
func (sc *ScLauncher) Shutdown() {
	if sc.adminServer != nil {
		stopped := make(chan struct{})
		go func() {
			sc.adminServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(sc.Config.ShutdownGrace):
			sc.adminServer.Stop()
		}
		sc.adminServer = nil
	}

	for _, ep := range sc.Endpoints {
		if err := sc.Registry.Release(ep.Addr()); err != nil {
			log.Warnf("release %s error:[%v]", ep.Addr(), err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), sc.Config.ShutdownGrace)
	defer cancel()
	for _, ep := range sc.Endpoints {
		if err := ep.Wait(ctx); err != nil {
			log.Warnf("endpoint %s still has %d connections, closing them", ep.Addr(), ep.ConnNum())
			ep.CloseConns()
			ep.Wait(context.Background())
		}
	}
	sc.Endpoints = nil

	if sc.errLogDone != nil {
		close(sc.errLogDone)
		sc.errLogDone = nil
	}
	if sc.fileLock != nil {
		if err := sc.fileLock.Unlock(); err != nil {
			log.Warnf("unlock %s error:[%v]", sc.Config.LockFile, err)
		}
		sc.fileLock = nil
	}
	scLauncher.CompareAndSwap(sc, nil)
	log.Info("SCMSG stopped")
}

func (sc *ScLauncher) activeErrorLog(errCh <-chan error, done <-chan struct{}) {
	for {
		select {
		case err := <-errCh:
			if err != nil {
				log.Error(err)
			}
		case <-done:
			return
		}
	}
}

func (sc *ScLauncher) ascii() {
	banner := `
	 ___  ___ _ __ ___  ___  __ _
	/ __|/ __| '_ ' _ \/ __|/ _' |   SCMSG v1.0.0
	\__ \ (__| | | | | \__ \ (_| |   Endpoints %v
	|___/\___|_| |_| |_|___/\__, |   Admin %v
	                        |___/
`
	admin := "disabled"
	if sc.adminAddr != nil {
		admin = sc.adminAddr.String()
	}
	addrs := make([]string, 0, len(sc.Endpoints))
	for _, ep := range sc.Endpoints {
		addrs = append(addrs, ep.Addr())
	}
	fmt.Printf(banner, addrs, admin)
}
