package ros

import (
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	modular "github.com/edwinhayes/logrus-modular"
	"github.com/edwinhayes/ropose/xmlrpc"
	"github.com/pkg/errors"
)

// *defaultNode implements Node interface
// a defaultNode instance must be accessed in user goroutine.
type defaultNode struct {
	name             string
	namespace        string
	qualifiedName    string
	masterURI        string
	xmlrpcURI        string
	xmlrpcListener   net.Listener
	xmlrpcHandler    *xmlrpc.Handler
	subscribers      map[string]*defaultSubscriber
	subscribersMutex sync.RWMutex
	publishers       sync.Map
	jobChan          chan func()
	interruptChan    chan os.Signal
	logger           modular.ModuleLogger
	ok               bool
	okMutex          sync.RWMutex
	waitGroup        sync.WaitGroup
	logDir           string
	hostname         string
	listenIP         string
	homeDir          string
	nameResolver     *NameResolver
	nonRosArgs       []string
}

func listenRandomPort(address string, trialLimit int) (net.Listener, error) {
	var listener net.Listener
	var err error
	numTrial := 0
	for numTrial < trialLimit {
		port := 1024 + rand.Intn(65535-1024)
		addr := fmt.Sprintf("%s:%d", address, port)
		listener, err = net.Listen("tcp", addr)
		if err == nil {
			return listener, nil
		}
		numTrial++
	}
	return nil, errors.New("listenRandomPort exceeds trial limit")
}

func newDefaultNode(name string, args []string) (*defaultNode, error) {
	node := new(defaultNode)

	namespace, nodeName, err := qualifyNodeName(name)
	if err != nil {
		return nil, err
	}

	remapping, params, specials, rest := processArguments(args)

	node.homeDir = filepath.Join(os.Getenv("HOME"), ".ros")
	if homeDir := os.Getenv("ROS_HOME"); len(homeDir) > 0 {
		node.homeDir = homeDir
	}

	node.name = nodeName
	if value, ok := specials["__name"]; ok {
		node.name = value
	}

	node.namespace = namespace
	if ns := os.Getenv("ROS_NAMESPACE"); len(ns) > 0 {
		node.namespace = ns
	}
	if value, ok := specials["__ns"]; ok {
		node.namespace = value
	}
	if !isValidNamespace(node.namespace) {
		return nil, errors.Errorf("invalid namespace '%s'", node.namespace)
	}

	node.logDir = filepath.Join(node.homeDir, "log")
	if logDir := os.Getenv("ROS_LOG_DIR"); len(logDir) > 0 {
		node.logDir = logDir
	}
	if value, ok := specials["__log"]; ok {
		node.logDir = value
	}

	var onlyLocalhost bool
	node.hostname, onlyLocalhost = determineHost()
	if value, ok := specials["__hostname"]; ok {
		node.hostname = value
		onlyLocalhost = (value == "localhost")
	} else if value, ok := specials["__ip"]; ok {
		node.hostname = value
		onlyLocalhost = (value == "::1" || strings.HasPrefix(value, "127."))
	}
	if onlyLocalhost {
		node.listenIP = "127.0.0.1"
	} else {
		node.listenIP = "0.0.0.0"
	}

	node.masterURI = os.Getenv("ROS_MASTER_URI")
	if value, ok := specials["__master"]; ok {
		node.masterURI = value
	}
	if len(node.masterURI) == 0 {
		node.masterURI = "http://localhost:11311"
	}

	node.nameResolver = newNameResolver(node.namespace, node.name, remapping)
	node.nonRosArgs = rest

	node.qualifiedName = node.nameResolver.qualifiedName
	node.subscribers = make(map[string]*defaultSubscriber)
	node.interruptChan = make(chan os.Signal, 1)
	node.ok = true

	logger := NewDefaultLogger()
	node.logger = logger

	// Install signal handler
	signal.Notify(node.interruptChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-node.interruptChan
		logger.Info("Interrupted")
		node.okMutex.Lock()
		node.ok = false
		node.okMutex.Unlock()
	}()

	node.jobChan = make(chan func(), 100)

	logger.Debugf("Master URI = %s", node.masterURI)

	// Set parameters set by arguments
	for k, v := range params {
		name := node.nameResolver.resolve(k)
		_, err := callRosAPI(node.masterURI, "setParam", node.qualifiedName, name, parseParamValue(v))
		if err != nil {
			return nil, err
		}
	}

	listener, err := listenRandomPort(node.listenIP, 10)
	if err != nil {
		logger.Fatal(err)
		return nil, err
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		// Not reached
		panic(err)
	}
	node.xmlrpcURI = fmt.Sprintf("http://%s:%s", node.hostname, port)
	logger.Debugf("listen on http://%s", listener.Addr().String())
	node.xmlrpcListener = listener
	m := map[string]xmlrpc.Method{
		"getBusStats":      func(callerId string) (interface{}, error) { return node.getBusStats(callerId) },
		"getBusInfo":       func(callerId string) (interface{}, error) { return node.getBusInfo(callerId) },
		"getMasterUri":     func(callerId string) (interface{}, error) { return node.getMasterURI(callerId) },
		"shutdown":         func(callerId string, msg string) (interface{}, error) { return node.shutdown(callerId, msg) },
		"getPid":           func(callerId string) (interface{}, error) { return node.getPid(callerId) },
		"getSubscriptions": func(callerId string) (interface{}, error) { return node.getSubscriptions(callerId) },
		"getPublications":  func(callerId string) (interface{}, error) { return node.getPublications(callerId) },
		"paramUpdate": func(callerId string, key string, value interface{}) (interface{}, error) {
			return node.paramUpdate(callerId, key, value)
		},
		"publisherUpdate": func(callerId string, topic string, publishers []interface{}) (interface{}, error) {
			return node.publisherUpdate(callerId, topic, publishers)
		},
		"requestTopic": func(callerId string, topic string, protocols []interface{}) (interface{}, error) {
			return node.requestTopic(callerId, topic, protocols)
		},
	}
	node.xmlrpcHandler = xmlrpc.NewHandler(m)
	go http.Serve(node.xmlrpcListener, node.xmlrpcHandler)
	logger.Debugf("Started %s", node.qualifiedName)
	return node, nil
}

func (node *defaultNode) OK() bool {
	node.okMutex.RLock()
	ok := node.ok
	node.okMutex.RUnlock()
	return ok
}

func (node *defaultNode) Name() string {
	return node.name
}

func (node *defaultNode) getBusStats(callerID string) (interface{}, error) {
	pubStats := []interface{}{}
	node.publishers.Range(func(_ interface{}, p interface{}) bool {
		pubStats = append(pubStats, p.(*defaultPublisher).getBusStats())
		return true
	})
	subStats := []interface{}{}
	node.subscribersMutex.RLock()
	for _, s := range node.subscribers {
		subStats = append(subStats, s.getBusStats())
	}
	node.subscribersMutex.RUnlock()
	serviceStats := []interface{}{}
	value := []interface{}{pubStats, subStats, serviceStats}
	return buildRosAPIResult(APIStatusSuccess, "Success", value), nil
}

func (node *defaultNode) getBusInfo(callerID string) (interface{}, error) {
	info := []interface{}{}
	node.publishers.Range(func(_ interface{}, p interface{}) bool {
		info = append(info, p.(*defaultPublisher).getBusInfo()...)
		return true
	})
	node.subscribersMutex.RLock()
	for _, s := range node.subscribers {
		info = append(info, s.getBusInfo()...)
	}
	node.subscribersMutex.RUnlock()
	return buildRosAPIResult(APIStatusSuccess, "Success", info), nil
}

func (node *defaultNode) getMasterURI(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", node.masterURI), nil
}

func (node *defaultNode) shutdown(callerID string, msg string) (interface{}, error) {
	if len(msg) > 0 {
		logger := node.logger
		logger.Infof("Shutdown requested by %s: %s", callerID, msg)
	}
	node.okMutex.Lock()
	node.ok = false
	node.okMutex.Unlock()
	return buildRosAPIResult(APIStatusSuccess, "Success", 0), nil
}

func (node *defaultNode) getPid(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "Success", os.Getpid()), nil
}

func (node *defaultNode) getSubscriptions(callerID string) (interface{}, error) {
	result := []interface{}{}
	node.subscribersMutex.RLock()
	for t, s := range node.subscribers {
		pair := []interface{}{t, s.msgType.Name()}
		result = append(result, pair)
	}
	node.subscribersMutex.RUnlock()
	return buildRosAPIResult(APIStatusSuccess, "Success", result), nil
}

func (node *defaultNode) getPublications(callerID string) (interface{}, error) {
	result := []interface{}{}
	node.publishers.Range(func(t interface{}, p interface{}) bool {
		pair := []interface{}{
			t.(string),
			p.(*defaultPublisher).msgType.Name(),
		}
		result = append(result, pair)
		return true
	})
	return buildRosAPIResult(APIStatusSuccess, "Success", result), nil
}

func (node *defaultNode) paramUpdate(callerID string, key string, value interface{}) (interface{}, error) {
	return buildRosAPIResult(APIStatusFailure, "Not subscribed", 0), nil
}

func (node *defaultNode) publisherUpdate(callerID string, topic string, publishers []interface{}) (interface{}, error) {
	logger := node.logger
	logger.Debug("Slave API publisherUpdate() called.")
	var code int32
	var message string
	node.subscribersMutex.RLock()
	sub, ok := node.subscribers[topic]
	node.subscribersMutex.RUnlock()
	if !ok {
		logger.Debug("publisherUpdate() called without subscribing topic.")
		code = APIStatusFailure
		message = "No such topic"
	} else {
		pubURIs := make([]string, 0, len(publishers))
		for _, uri := range publishers {
			u, ok := uri.(string)
			if !ok {
				return nil, errors.New("publisher list contains a non string object")
			}
			pubURIs = append(pubURIs, u)
		}
		sub.pubListChan <- pubURIs
		code = APIStatusSuccess
		message = "Success"
	}
	return buildRosAPIResult(code, message, 0), nil
}

func (node *defaultNode) requestTopic(callerID string, topic string, protocols []interface{}) (interface{}, error) {
	logger := node.logger
	logger.Debugf("Slave API requestTopic(%s, %s, ...) called.", callerID, topic)
	var code int32
	var message string
	var value interface{}
	if pub, ok := node.publishers.Load(topic); !ok {
		logger.Debug("requestTopic() called with not publishing topic.")
		code = APIStatusFailure
		message = "No such topic"
		value = nil
	} else {
		selectedProtocol := make([]interface{}, 0)
		for _, v := range protocols {
			protocolParams, ok := v.([]interface{})
			if !ok || len(protocolParams) == 0 {
				continue
			}
			protocolName, _ := protocolParams[0].(string)
			if protocolName == "TCPROS" {
				logger.Debug("TCPROS requested")
				host, portStr, err := pub.(*defaultPublisher).hostAndPort()
				if err != nil {
					return nil, err
				}
				p, err := strconv.ParseInt(portStr, 10, 32)
				if err != nil {
					return nil, err
				}
				selectedProtocol = append(selectedProtocol, "TCPROS")
				selectedProtocol = append(selectedProtocol, host)
				selectedProtocol = append(selectedProtocol, int(p))
				break
			}
		}
		code = APIStatusSuccess
		message = "Success"
		value = selectedProtocol
	}
	return buildRosAPIResult(code, message, value), nil
}

func (node *defaultNode) NewPublisher(topic string, msgType MessageType, queueSize int) Publisher {
	return node.NewPublisherWithCallbacks(topic, msgType, queueSize, nil, nil)
}

func (node *defaultNode) NewPublisherWithCallbacks(topic string, msgType MessageType, queueSize int,
	connectCallback, disconnectCallback func(SingleSubscriberPublisher)) Publisher {
	name := node.nameResolver.remap(topic)
	pub, ok := node.publishers.Load(name)
	logger := node.logger
	if !ok {
		_, err := callRosAPI(node.masterURI, "registerPublisher",
			node.qualifiedName,
			name, msgType.Name(),
			node.xmlrpcURI)
		if err != nil {
			logger.Fatalf("Failed to call registerPublisher(): %s", err)
		}

		pub = newDefaultPublisher(node, name, msgType, queueSize, connectCallback, disconnectCallback)
		node.publishers.Store(name, pub)
		go pub.(*defaultPublisher).start(&node.waitGroup)
	}
	return pub.(*defaultPublisher)
}

// RemovePublisher shuts down and deletes an existing topic publisher.
func (node *defaultNode) RemovePublisher(topic string) {
	name := node.nameResolver.remap(topic)
	if pub, ok := node.publishers.Load(name); ok {
		pub.(*defaultPublisher).Shutdown()
		node.publishers.Delete(name)
	}
}

// GetPublishedTopics asks the master for the topics currently being
// published under subgraph. An empty subgraph means the whole graph.
func (node *defaultNode) GetPublishedTopics(subgraph string) ([]interface{}, error) {
	logger := node.logger
	logger.Debug("Call Master API getPublishedTopics")
	result, err := callRosAPI(node.masterURI, "getPublishedTopics",
		node.qualifiedName, subgraph)
	if err != nil {
		return nil, err
	}
	list, ok := result.([]interface{})
	if !ok {
		return nil, errors.New("getPublishedTopics result is not a list")
	}
	return list, nil
}

func (node *defaultNode) NewSubscriber(topic string, msgType MessageType, callback interface{}) Subscriber {
	name := node.nameResolver.remap(topic)
	logger := node.logger
	node.subscribersMutex.Lock()
	sub, ok := node.subscribers[name]
	if !ok {
		logger.Debug("Call Master API registerSubscriber")
		result, err := callRosAPI(node.masterURI, "registerSubscriber",
			node.qualifiedName,
			name,
			msgType.Name(),
			node.xmlrpcURI)
		if err != nil {
			node.subscribersMutex.Unlock()
			logger.Fatalf("Failed to call registerSubscriber() for %s.", err)
		}
		list, ok := result.([]interface{})
		if !ok {
			node.subscribersMutex.Unlock()
			logger.Fatalf("registerSubscriber() result is not a list but %T.", result)
		}
		var publishers []string
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				node.subscribersMutex.Unlock()
				logger.Fatal("Publisher list contains no string object")
			}
			publishers = append(publishers, s)
		}

		logger.Debugf("Publisher URI list: %v", publishers)

		sub = newDefaultSubscriber(name, msgType, callback)
		node.subscribers[name] = sub
		node.subscribersMutex.Unlock()

		logger.Debugf("Start subscriber goroutine for topic '%s'", sub.topic)
		go sub.start(&node.waitGroup, node.qualifiedName, node.xmlrpcURI, node.masterURI, node.jobChan, logger)
		sub.pubListChan <- publishers
		logger.Debugf("Update publisher list for topic '%s'", sub.topic)
	} else {
		node.subscribersMutex.Unlock()
		sub.addCallbackChan <- callback
	}
	return sub
}

// RemoveSubscriber shuts down and deletes an existing topic subscriber.
func (node *defaultNode) RemoveSubscriber(topic string) {
	name := node.nameResolver.remap(topic)
	node.subscribersMutex.Lock()
	if sub, ok := node.subscribers[name]; ok {
		sub.Shutdown()
		delete(node.subscribers, name)
	}
	node.subscribersMutex.Unlock()
}

func (node *defaultNode) SpinOnce() {
	timeoutChan := time.After(10 * time.Millisecond)
	select {
	case job := <-node.jobChan:
		job()
	case <-timeoutChan:
		break
	}
}

func (node *defaultNode) Spin() {
	logger := node.logger
	for node.OK() {
		timeoutChan := time.After(1000 * time.Millisecond)
		select {
		case job := <-node.jobChan:
			logger.Debug("Execute job")
			job()
		case <-timeoutChan:
			break
		}
	}
}

func (node *defaultNode) Shutdown() {
	logger := node.logger
	logger.Debug("Shutting node down")
	node.okMutex.Lock()
	node.ok = false
	node.okMutex.Unlock()
	logger.Debug("Shutdown subscribers")
	node.subscribersMutex.Lock()
	for _, s := range node.subscribers {
		s.Shutdown()
	}
	node.subscribers = make(map[string]*defaultSubscriber)
	node.subscribersMutex.Unlock()
	logger.Debug("Shutdown subscribers...done")
	logger.Debug("Shutdown publishers")
	node.publishers.Range(func(key interface{}, value interface{}) bool {
		value.(*defaultPublisher).Shutdown()
		node.publishers.Delete(key)
		return true
	})
	logger.Debug("Shutdown publishers...done")
	logger.Debug("Wait all goroutines")
	node.waitGroup.Wait()
	logger.Debug("Wait all goroutines...Done")
	logger.Debug("Close XMLRPC listener")
	node.xmlrpcListener.Close()
	logger.Debug("Wait XMLRPC server shutdown")
	node.xmlrpcHandler.WaitForShutdown()
	logger.Debug("Shutting node down completed")
}

func (node *defaultNode) GetParam(key string) (interface{}, error) {
	name := node.nameResolver.resolve(key)
	return callRosAPI(node.masterURI, "getParam", node.qualifiedName, name)
}

func (node *defaultNode) SetParam(key string, value interface{}) error {
	name := node.nameResolver.resolve(key)
	_, err := callRosAPI(node.masterURI, "setParam", node.qualifiedName, name, value)
	return err
}

func (node *defaultNode) HasParam(key string) (bool, error) {
	name := node.nameResolver.resolve(key)
	result, err := callRosAPI(node.masterURI, "hasParam", node.qualifiedName, name)
	if err != nil {
		return false, err
	}
	hasParam, ok := result.(bool)
	if !ok {
		return false, errors.New("hasParam result is not a bool")
	}
	return hasParam, nil
}

func (node *defaultNode) SearchParam(key string) (string, error) {
	result, err := callRosAPI(node.masterURI, "searchParam", node.qualifiedName, key)
	if err != nil {
		return "", err
	}
	foundKey, ok := result.(string)
	if !ok {
		return "", errors.New("searchParam result is not a string")
	}
	return foundKey, nil
}

func (node *defaultNode) DeleteParam(key string) error {
	name := node.nameResolver.resolve(key)
	_, err := callRosAPI(node.masterURI, "deleteParam", node.qualifiedName, name)
	return err
}

func (node *defaultNode) Logger() *modular.ModuleLogger {
	return &node.logger
}

func (node *defaultNode) NonRosArgs() []string {
	return node.nonRosArgs
}
