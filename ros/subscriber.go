package ros

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	modular "github.com/edwinhayes/logrus-modular"
)

type messageEvent struct {
	bytes []byte
	event MessageEvent
}

//remotePublisherConn tracks one TCPROS connection to a remote publisher.
//The quit channel is closed to stop the reader goroutine; the counters are
//updated atomically by the reader and read by the subscription goroutine.
type remotePublisherConn struct {
	uri           string
	connID        int
	quitChan      chan struct{}
	bytesReceived uint64
	numReceived   uint64
}

// The subscription object runs in own goroutine (startSubscription).
// Do not access any properties from other goroutine.
type defaultSubscriber struct {
	topic            string
	msgType          MessageType
	pubList          []string
	numPublishers    int32
	nextConnID       int
	pubListChan      chan []string
	msgChan          chan messageEvent
	callbacks        []interface{}
	addCallbackChan  chan interface{}
	shutdownChan     chan struct{}
	busInfoChan      chan chan []interface{}
	busStatsChan     chan chan []interface{}
	connections      map[string]*remotePublisherConn
	disconnectedChan chan string
}

func newDefaultSubscriber(topic string, msgType MessageType, callback interface{}) *defaultSubscriber {
	sub := new(defaultSubscriber)
	sub.topic = topic
	sub.msgType = msgType
	sub.msgChan = make(chan messageEvent, 10)
	sub.pubListChan = make(chan []string, 10)
	sub.addCallbackChan = make(chan interface{}, 10)
	sub.shutdownChan = make(chan struct{}, 10)
	sub.busInfoChan = make(chan chan []interface{})
	sub.busStatsChan = make(chan chan []interface{})
	sub.disconnectedChan = make(chan string, 10)
	sub.connections = make(map[string]*remotePublisherConn)
	sub.nextConnID = 1
	sub.callbacks = []interface{}{callback}
	return sub
}

//offerJob enqueues a callback job without blocking the subscription
//goroutine. When the job queue is full the oldest pending job is evicted.
func offerJob(jobChan chan func(), job func()) {
	for {
		select {
		case jobChan <- job:
			return
		default:
			select {
			case <-jobChan:
			default:
			}
		}
	}
}

func (sub *defaultSubscriber) start(wg *sync.WaitGroup, nodeID string, nodeAPIURI string, masterURI string, jobChan chan func(), logger modular.ModuleLogger) {
	logger.Debugf("Subscriber goroutine for %s started.", sub.topic)
	wg.Add(1)
	defer wg.Done()
	defer func() {
		logger.Debugf("%s : defaultSubscriber.start exit", sub.topic)
	}()
	for {
		select {
		case list := <-sub.pubListChan:
			logger.Debugf("%s : Receive pubListChan", sub.topic)
			deadPubs := setDifference(sub.pubList, list)
			newPubs := setDifference(list, sub.pubList)
			sub.pubList = list
			atomic.StoreInt32(&sub.numPublishers, int32(len(list)))

			for _, pub := range deadPubs {
				if conn, ok := sub.connections[pub]; ok {
					close(conn.quitChan)
					delete(sub.connections, pub)
				}
			}
			for _, pub := range newPubs {
				protocols := []interface{}{[]interface{}{"TCPROS"}}
				result, err := callRosAPI(pub, "requestTopic", nodeID, sub.topic, protocols)
				if err != nil {
					logger.Errorf("%s : %s", sub.topic, err)
					continue
				}
				protocolParams, ok := result.([]interface{})
				if !ok || len(protocolParams) < 3 {
					logger.Errorf("%s : malformed requestTopic result", sub.topic)
					continue
				}
				name, _ := protocolParams[0].(string)
				if name == "TCPROS" {
					addr, _ := protocolParams[1].(string)
					port, _ := protocolParams[2].(int32)
					uri := fmt.Sprintf("%s:%d", addr, port)
					conn := &remotePublisherConn{
						uri:      uri,
						connID:   sub.nextConnID,
						quitChan: make(chan struct{}),
					}
					sub.nextConnID++
					sub.connections[pub] = conn
					go startRemotePublisherConn(logger, conn, sub.topic,
						sub.msgType.MD5Sum(), sub.msgType.Name(), nodeID,
						sub.msgChan, sub.disconnectedChan)
				} else {
					logger.Warnf("%s : unsupported protocol: %s", sub.topic, name)
				}
			}
		case callback := <-sub.addCallbackChan:
			logger.Debugf("%s : Receive addCallbackChan", sub.topic)
			sub.callbacks = append(sub.callbacks, callback)
		case msgEvent := <-sub.msgChan:
			// Pop received message then bind callbacks and enqueue to the job channel.
			logger.Debugf("%s : Receive msgChan", sub.topic)
			callbacks := make([]interface{}, len(sub.callbacks))
			copy(callbacks, sub.callbacks)
			offerJob(jobChan, func() {
				m := sub.msgType.NewMessage()
				reader := bytes.NewReader(msgEvent.bytes)
				if err := m.Deserialize(reader); err != nil {
					logger.Errorf("%s : %s", sub.topic, err)
					return
				}
				args := []reflect.Value{reflect.ValueOf(m), reflect.ValueOf(msgEvent.event)}
				for _, callback := range callbacks {
					fun := reflect.ValueOf(callback)
					numArgsNeeded := fun.Type().NumIn()
					if numArgsNeeded <= 2 {
						fun.Call(args[0:numArgsNeeded])
					}
				}
			})
			logger.Debugf("%s : Callback job enqueued.", sub.topic)
		case ch := <-sub.busInfoChan:
			ch <- sub.busInfo()
		case ch := <-sub.busStatsChan:
			ch <- sub.busStats()
		case pubURI := <-sub.disconnectedChan:
			logger.Debugf("%s : Connection disconnected to %s", sub.topic, pubURI)
			for api, conn := range sub.connections {
				if conn.uri == pubURI {
					delete(sub.connections, api)
					break
				}
			}
		case <-sub.shutdownChan:
			// Shutdown subscription goroutine
			logger.Debugf("%s : Receive shutdownChan", sub.topic)
			for _, conn := range sub.connections {
				close(conn.quitChan)
			}
			_, err := callRosAPI(masterURI, "unregisterSubscriber", nodeID, sub.topic, nodeAPIURI)
			if err != nil {
				logger.Warnf("%s : %s", sub.topic, err)
			}
			return
		}
	}
}

//busInfo reports one [connectionId, destinationId, direction, transport,
//topic, connected] entry per upstream publisher connection.
func (sub *defaultSubscriber) busInfo() []interface{} {
	info := []interface{}{}
	for _, conn := range sub.connections {
		entry := []interface{}{conn.connID, conn.uri, "i", "TCPROS", sub.topic, true}
		info = append(info, entry)
	}
	return info
}

//busStats reports [topic, connStats] where connStats holds one
//[connectionId, bytesReceived, numReceived, dropEstimate, connected] entry
//per upstream connection. The drop estimate is unknown and reported as -1.
func (sub *defaultSubscriber) busStats() []interface{} {
	connStats := []interface{}{}
	for _, conn := range sub.connections {
		received := atomic.LoadUint64(&conn.bytesReceived)
		num := atomic.LoadUint64(&conn.numReceived)
		connStats = append(connStats, []interface{}{conn.connID, int(received), int(num), -1, true})
	}
	return []interface{}{sub.topic, connStats}
}

func (sub *defaultSubscriber) getBusInfo() []interface{} {
	ch := make(chan []interface{}, 1)
	select {
	case sub.busInfoChan <- ch:
		return <-ch
	case <-time.After(100 * time.Millisecond):
		return []interface{}{}
	}
}

func (sub *defaultSubscriber) getBusStats() []interface{} {
	ch := make(chan []interface{}, 1)
	select {
	case sub.busStatsChan <- ch:
		return <-ch
	case <-time.After(100 * time.Millisecond):
		return []interface{}{sub.topic, []interface{}{}}
	}
}

func startRemotePublisherConn(logger modular.ModuleLogger,
	pubConn *remotePublisherConn, topic string, md5sum string,
	msgType string, nodeID string,
	msgChan chan messageEvent,
	disconnectedChan chan string) {
	logger.Debugf("%s : startRemotePublisherConn()", topic)

	defer func() {
		logger.Debugf("%s : startRemotePublisherConn() exit", topic)
	}()

	conn, err := net.Dial("tcp", pubConn.uri)
	if err != nil {
		logger.Errorf("%s : Failed to connect to %s", topic, pubConn.uri)
		return
	}
	defer conn.Close()

	// 1. Write connection header
	var headers []header
	headers = append(headers, header{"topic", topic})
	headers = append(headers, header{"md5sum", md5sum})
	headers = append(headers, header{"type", msgType})
	headers = append(headers, header{"callerid", nodeID})
	logger.Debugf("%s : TCPROS Connection Header", topic)
	for _, h := range headers {
		logger.Debugf("          `%s` = `%s`", h.key, h.value)
	}
	err = writeConnectionHeader(headers, conn)
	if err != nil {
		logger.Errorf("%s : Failed to write connection header.", topic)
		return
	}

	// 2. Read response header
	var resHeaders []header
	resHeaders, err = readConnectionHeader(conn)
	if err != nil {
		logger.Errorf("%s : Failed to read response header.", topic)
		return
	}
	logger.Debugf("%s : TCPROS Response Header:", topic)
	resHeaderMap := make(map[string]string)
	for _, h := range resHeaders {
		resHeaderMap[h.key] = h.value
		logger.Debugf("          `%s` = `%s`", h.key, h.value)
	}

	if resHeaderMap["type"] != msgType || resHeaderMap["md5sum"] != md5sum {
		logger.Errorf("%s : Incompatible message: %s:%s %s:%s", topic,
			resHeaderMap["type"], msgType, resHeaderMap["md5sum"], md5sum)
		return
	}
	logger.Debugf("%s : Start receiving messages...", topic)
	event := MessageEvent{ // Event struct to be sent with each message.
		PublisherName:    resHeaderMap["callerid"],
		ConnectionHeader: resHeaderMap,
	}

	// 3. Start reading messages
	readingSize := true
	var msgSize uint32 = 0
	var buffer []byte
	for {
		select {
		case <-pubConn.quitChan:
			return
		default:
			conn.SetDeadline(time.Now().Add(1000 * time.Millisecond))
			if readingSize {
				err := binary.Read(conn, binary.LittleEndian, &msgSize)
				if err != nil {
					if neterr, ok := err.(net.Error); ok && neterr.Timeout() {
						continue
					}
					logger.Errorf("%s : Failed to read a message size", topic)
					disconnectedChan <- pubConn.uri
					return
				}
				buffer = make([]byte, int(msgSize))
				readingSize = false
			} else {
				_, err = io.ReadFull(conn, buffer)
				if err != nil {
					if neterr, ok := err.(net.Error); ok && neterr.Timeout() {
						continue
					}
					logger.Errorf("%s : Failed to read a message body", topic)
					disconnectedChan <- pubConn.uri
					return
				}
				event.ReceiptTime = time.Now()
				select {
				case msgChan <- messageEvent{bytes: buffer, event: event}:
				case <-pubConn.quitChan:
					return
				}
				atomic.AddUint64(&pubConn.bytesReceived, uint64(msgSize)+4)
				atomic.AddUint64(&pubConn.numReceived, 1)
				readingSize = true
			}
		}
	}
}

func (sub *defaultSubscriber) Shutdown() {
	sub.shutdownChan <- struct{}{}
}

func (sub *defaultSubscriber) GetNumPublishers() int {
	return int(atomic.LoadInt32(&sub.numPublishers))
}
