package util

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CtrlCallback handles one line received on a ctrl socket. Anything written to conn is returned to the client ahead
// of the "ok" trailer.
type CtrlCallback func(line string, conn net.Conn) (int64, error)

var ctrlListeners = make(map[string]*CtrlListener)
var ctrlMutex sync.Mutex

// CtrlListener exposes a unix socket, named after the process id, which accepts newline-delimited keyword commands.
type CtrlListener struct {
	key       string
	listener  net.Listener
	lock      sync.Mutex
	callbacks map[string][]CtrlCallback
	running   bool
}

// GetCtrlListener returns the listener for root and id, creating it on first use.
func GetCtrlListener(root, id string) (cl *CtrlListener, err error) {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	key := root + id
	cl, found := ctrlListeners[key]
	if found {
		return cl, nil
	}

	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating ctrl root")
	}
	cl = &CtrlListener{key: key, callbacks: make(map[string][]CtrlCallback)}
	unixAddress, err := net.ResolveUnixAddr("unix", CtrlSocketPath(root, id))
	if err != nil {
		return nil, errors.Wrap(err, "error resolving unix address")
	}
	cl.listener, err = net.ListenUnix("unix", unixAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error listening")
	}
	ctrlListeners[key] = cl
	return cl, nil
}

func CtrlSocketPath(root, id string) string {
	return filepath.Join(root, fmt.Sprintf("%s.%d.sock", id, os.Getpid()))
}

func (self *CtrlListener) Addr() net.Addr {
	return self.listener.Addr()
}

func (self *CtrlListener) AddCallback(keyword string, f CtrlCallback) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.callbacks[keyword] = append(self.callbacks[keyword], f)
}

func (self *CtrlListener) Start() {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	if !self.running {
		self.running = true
		go self.run()
	}
}

func (self *CtrlListener) Close() error {
	ctrlMutex.Lock()
	delete(ctrlListeners, self.key)
	ctrlMutex.Unlock()
	return self.listener.Close()
}

func (self *CtrlListener) run() {
	logrus.Infof("[%s] started", self.listener.Addr())
	defer logrus.Infof("[%s] exited", self.listener.Addr())

	for {
		conn, err := self.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logrus.Errorf("error accepting ctrl connection (%v)", err)
			continue
		}
		go self.handle(conn)
	}
}

func (self *CtrlListener) handle(conn net.Conn) {
	logrus.Debugf("new connection for [%s]", conn.LocalAddr())
	defer logrus.Debugf("ended connection for [%s]", conn.LocalAddr())
	defer func() { _ = conn.Close() }()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if line == "" {
				return
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return
			}
			continue
		}
		if rErr := self.dispatch(line, conn); rErr != nil {
			logrus.Errorf("error responding (%v)", rErr)
			return
		}
		if err != nil {
			return
		}
	}
}

func (self *CtrlListener) dispatch(line string, conn net.Conn) error {
	tokens := strings.Fields(line)
	self.lock.Lock()
	fs, found := self.callbacks[tokens[0]]
	self.lock.Unlock()
	if !found {
		logrus.Errorf("no callback for [%s]", line)
		_, err := conn.Write([]byte("syntax error?\n"))
		return err
	}
	for _, f := range fs {
		if _, err := f(line, conn); err != nil {
			logrus.Errorf("error executing callback (%v)", err)
			_, wErr := conn.Write([]byte(fmt.Sprintf("error (%s)\n", err)))
			return wErr
		}
	}
	_, err := conn.Write([]byte("ok\n"))
	return err
}
