package ros

import (
	"bytes"
	"container/list"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	modular "github.com/edwinhayes/logrus-modular"
)

type remoteSubscriberSessionError struct {
	session *remoteSubscriberSession
	err     error
}

func (e *remoteSubscriberSessionError) Error() string {
	return fmt.Sprintf("remoteSubscriberSession %v error: %v", e.session, e.err)
}

type sessionCallerID struct {
	session  *remoteSubscriberSession
	callerID string
}

type defaultPublisher struct {
	node               *defaultNode
	topic              string
	msgType            MessageType
	queueSize          int
	msgChan            chan []byte
	shutdownChan       chan struct{}
	sessions           *list.List
	nextConnID         int
	sessionChan        chan *remoteSubscriberSession
	sessionErrorChan   chan error
	calleridChan       chan sessionCallerID
	busInfoChan        chan chan []interface{}
	busStatsChan       chan chan []interface{}
	listenerErrorChan  chan error
	listener           net.Listener
	connectCallback    func(SingleSubscriberPublisher)
	disconnectCallback func(SingleSubscriberPublisher)
}

//offerBytes enqueues msg without ever blocking the caller. When the channel
//is full the oldest entry is evicted so the newest data wins.
func offerBytes(ch chan []byte, msg []byte) {
	for {
		select {
		case ch <- msg:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func newDefaultPublisher(node *defaultNode,
	topic string, msgType MessageType, queueSize int,
	connectCallback, disconnectCallback func(SingleSubscriberPublisher)) *defaultPublisher {
	if queueSize < 1 {
		queueSize = 1
	}
	pub := new(defaultPublisher)
	pub.node = node
	pub.topic = topic
	pub.msgType = msgType
	pub.queueSize = queueSize
	pub.shutdownChan = make(chan struct{}, 10)
	pub.msgChan = make(chan []byte, 10)
	pub.listenerErrorChan = make(chan error, 10)
	pub.sessionChan = make(chan *remoteSubscriberSession, 10)
	pub.sessionErrorChan = make(chan error, 10)
	pub.calleridChan = make(chan sessionCallerID, 10)
	pub.busInfoChan = make(chan chan []interface{})
	pub.busStatsChan = make(chan chan []interface{})
	pub.sessions = list.New()
	pub.nextConnID = 1
	pub.connectCallback = connectCallback
	pub.disconnectCallback = disconnectCallback
	if listener, err := listenRandomPort(node.listenIP, 10); err != nil {
		panic(err)
	} else {
		pub.listener = listener
	}
	return pub
}

func (pub *defaultPublisher) start(wg *sync.WaitGroup) {
	logger := pub.node.logger
	logger.Debugf("Publisher goroutine for %s started.", pub.topic)
	wg.Add(1)
	defer func() {
		logger.Debug("defaultPublisher.start exit")
		wg.Done()
	}()

	go pub.listenRemoteSubscriber()

	for {
		select {
		case msg := <-pub.msgChan:
			for e := pub.sessions.Front(); e != nil; e = e.Next() {
				session := e.Value.(*remoteSubscriberSession)
				offerBytes(session.msgChan, msg)
			}
		case err := <-pub.listenerErrorChan:
			logger.Debugf("Listener closed unexpectedly: %s", err)
			pub.listener.Close()
			return
		case s := <-pub.sessionChan:
			s.connID = pub.nextConnID
			pub.nextConnID++
			pub.sessions.PushBack(s)
			go s.start()
		case info := <-pub.calleridChan:
			info.session.callerID = info.callerID
		case ch := <-pub.busInfoChan:
			ch <- pub.busInfo()
		case ch := <-pub.busStatsChan:
			ch <- pub.busStats()
		case err := <-pub.sessionErrorChan:
			logger.Error(err)
			if sessionError, ok := err.(*remoteSubscriberSessionError); ok {
				for e := pub.sessions.Front(); e != nil; e = e.Next() {
					if e.Value == sessionError.session {
						pub.sessions.Remove(e)
						break
					}
				}
			}
		case <-pub.shutdownChan:
			logger.Debug("defaultPublisher.start Receive shutdownChan")
			pub.listener.Close()
			_, err := callRosAPI(pub.node.masterURI, "unregisterPublisher", pub.node.qualifiedName, pub.topic, pub.node.xmlrpcURI)
			if err != nil {
				logger.Warn(err)
			}
			for e := pub.sessions.Front(); e != nil; e = e.Next() {
				session := e.Value.(*remoteSubscriberSession)
				select {
				case session.quitChan <- struct{}{}:
				default:
				}
			}
			pub.sessions.Init() // Clear all sessions
			return
		}
	}
}

//busInfo reports one [connectionId, destinationId, direction, transport,
//topic, connected] entry per active subscriber connection. Runs in the
//publisher goroutine which owns the session list.
func (pub *defaultPublisher) busInfo() []interface{} {
	info := []interface{}{}
	for e := pub.sessions.Front(); e != nil; e = e.Next() {
		session := e.Value.(*remoteSubscriberSession)
		destination := session.callerID
		if destination == "" {
			destination = session.conn.RemoteAddr().String()
		}
		entry := []interface{}{session.connID, destination, "o", "TCPROS", pub.topic, true}
		info = append(info, entry)
	}
	return info
}

//busStats reports [topic, messageDataSent, connStats] where connStats holds
//one [connectionId, bytesSent, numSent, connected] entry per connection.
func (pub *defaultPublisher) busStats() []interface{} {
	connStats := []interface{}{}
	var totalBytes uint64
	for e := pub.sessions.Front(); e != nil; e = e.Next() {
		session := e.Value.(*remoteSubscriberSession)
		sent := atomic.LoadUint64(&session.bytesSent)
		num := atomic.LoadUint64(&session.numSent)
		totalBytes += sent
		connStats = append(connStats, []interface{}{session.connID, int(sent), int(num), true})
	}
	return []interface{}{pub.topic, int(totalBytes), connStats}
}

func (pub *defaultPublisher) getBusInfo() []interface{} {
	ch := make(chan []interface{}, 1)
	select {
	case pub.busInfoChan <- ch:
		return <-ch
	case <-time.After(100 * time.Millisecond):
		return []interface{}{}
	}
}

func (pub *defaultPublisher) getBusStats() []interface{} {
	ch := make(chan []interface{}, 1)
	select {
	case pub.busStatsChan <- ch:
		return <-ch
	case <-time.After(100 * time.Millisecond):
		return []interface{}{pub.topic, 0, []interface{}{}}
	}
}

func (pub *defaultPublisher) listenRemoteSubscriber() {
	logger := pub.node.logger
	logger.Debugf("Start listen %s.", pub.listener.Addr().String())
	defer func() {
		logger.Debug("defaultPublisher.listenRemoteSubscriber exit")
	}()

	for {
		conn, err := pub.listener.Accept()
		if err != nil {
			pub.listenerErrorChan <- err
			close(pub.listenerErrorChan)
			return
		}

		logger.Debugf("Connected %s", conn.RemoteAddr().String())
		session := newRemoteSubscriberSession(pub, conn)
		pub.sessionChan <- session
	}
}

func (pub *defaultPublisher) Publish(msg Message) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		logger := pub.node.logger
		logger.Errorf("Failed to serialize a message for %s: %s", pub.topic, err)
		return
	}
	offerBytes(pub.msgChan, buf.Bytes())
}

func (pub *defaultPublisher) Shutdown() {
	pub.shutdownChan <- struct{}{}
}

func (pub *defaultPublisher) hostAndPort() (string, string, error) {
	_, port, err := net.SplitHostPort(pub.listener.Addr().String())
	if err != nil {
		// Not reached
		logger := pub.node.logger
		logger.Error("failed to split host port")
		return "", "", err
	}
	return pub.node.hostname, port, nil
}

type remoteSubscriberSession struct {
	conn               net.Conn
	nodeID             string
	connID             int
	callerID           string
	topic              string
	typeText           string
	md5sum             string
	typeName           string
	queueSize          int
	bytesSent          uint64
	numSent            uint64
	quitChan           chan struct{}
	msgChan            chan []byte
	errorChan          chan error
	calleridChan       chan sessionCallerID
	logger             *modular.ModuleLogger
	connectCallback    func(SingleSubscriberPublisher)
	disconnectCallback func(SingleSubscriberPublisher)
}

func newRemoteSubscriberSession(pub *defaultPublisher, conn net.Conn) *remoteSubscriberSession {
	session := new(remoteSubscriberSession)
	session.conn = conn
	session.nodeID = pub.node.qualifiedName
	session.topic = pub.topic
	session.typeText = pub.msgType.Text()
	session.md5sum = pub.msgType.MD5Sum()
	session.typeName = pub.msgType.Name()
	session.queueSize = pub.queueSize
	session.quitChan = make(chan struct{}, 1)
	session.msgChan = make(chan []byte, 10)
	session.errorChan = pub.sessionErrorChan
	session.calleridChan = pub.calleridChan
	session.logger = &pub.node.logger
	session.connectCallback = pub.connectCallback
	session.disconnectCallback = pub.disconnectCallback
	return session
}

type singleSubPub struct {
	subName string
	topic   string
	msgChan chan []byte
}

func (ssp *singleSubPub) Publish(msg Message) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		return
	}
	offerBytes(ssp.msgChan, buf.Bytes())
}

func (ssp *singleSubPub) GetSubscriberName() string {
	return ssp.subName
}

func (ssp *singleSubPub) GetTopic() string {
	return ssp.topic
}

func (session *remoteSubscriberSession) start() {
	logger := *session.logger
	logger.Debug("remoteSubscriberSession.start enter")

	ssp := &singleSubPub{
		topic:   session.topic,
		msgChan: session.msgChan,
		// subName is filled in after the header gets read later in this function.
	}

	defer func() {
		logger.Debug("remoteSubscriberSession.start exit")

		if session.disconnectCallback != nil {
			session.disconnectCallback(ssp)
		}
	}()
	defer func() {
		if err := recover(); err != nil {
			if e, ok := err.(error); ok {
				session.errorChan <- &remoteSubscriberSessionError{session, e}
			} else {
				e = fmt.Errorf("unknown error value")
				session.errorChan <- &remoteSubscriberSessionError{session, e}
			}
		} else {
			e := fmt.Errorf("normal exit")
			session.errorChan <- &remoteSubscriberSessionError{session, e}
		}
	}()
	// 1. Read connection header
	headers, err := readConnectionHeader(session.conn)
	if err != nil {
		logger.Error("failed to read connection header")
		return
	}
	logger.Debug("TCPROS Connection Header:")
	headerMap := make(map[string]string)
	for _, h := range headers {
		headerMap[h.key] = h.value
		logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}

	if headerMap["type"] != session.typeName && headerMap["type"] != "*" {
		logger.Errorf("incompatible message type: does not match for topic %s: %s vs %s",
			session.topic, session.typeName, headerMap["type"])
		return
	}

	if headerMap["md5sum"] != session.md5sum && headerMap["md5sum"] != "*" {
		logger.Errorf("incompatible message md5: does not match for topic %s: %s vs %s",
			session.topic, session.md5sum, headerMap["md5sum"])
		return
	}

	ssp.subName = headerMap["callerid"]
	session.calleridChan <- sessionCallerID{session, ssp.subName}
	if session.connectCallback != nil {
		go session.connectCallback(ssp)
	}

	// 2. Return response header
	var resHeaders []header
	resHeaders = append(resHeaders, header{"message_definition", session.typeText})
	resHeaders = append(resHeaders, header{"callerid", session.nodeID})
	resHeaders = append(resHeaders, header{"latching", "0"})
	resHeaders = append(resHeaders, header{"md5sum", session.md5sum})
	resHeaders = append(resHeaders, header{"topic", session.topic})
	resHeaders = append(resHeaders, header{"type", session.typeName})
	logger.Debug("TCPROS Response Header")
	for _, h := range resHeaders {
		logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}
	err = writeConnectionHeader(resHeaders, session.conn)
	if err != nil {
		logger.Error("failed to write response header")
		return
	}

	// 3. Start sending messages. The queue keeps at most queueSize outgoing
	// messages and evicts the oldest when a new one arrives; a queue size of
	// one therefore always delivers the latest message.
	logger.Debug("Start sending messages...")
	queue := make(chan []byte, session.queueSize)
	for {
		select {
		case msg := <-session.msgChan:
			if len(queue) == session.queueSize {
				<-queue
			}
			queue <- msg

		case <-session.quitChan:
			logger.Debug("Receive quitChan")
			return

		case msg := <-queue:
			logger.Debug(hex.EncodeToString(msg))
			session.conn.SetDeadline(time.Now().Add(10 * time.Millisecond))
			size := uint32(len(msg))
			if err := binary.Write(session.conn, binary.LittleEndian, size); err != nil {
				if neterr, ok := err.(net.Error); ok && neterr.Timeout() {
					continue
				} else {
					logger.Error(err)
					return
				}
			}
			session.conn.SetDeadline(time.Now().Add(10 * time.Millisecond))
			if _, err := session.conn.Write(msg); err != nil {
				if neterr, ok := err.(net.Error); ok && neterr.Timeout() {
					continue
				} else {
					logger.Error(err)
					return
				}
			}
			atomic.AddUint64(&session.bytesSent, uint64(len(msg))+4)
			atomic.AddUint64(&session.numSent, 1)
		}
	}
}
