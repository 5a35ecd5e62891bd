package service

import "go.uber.org/zap"

type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Notifications collects messages raised while serving one request.
type Notifications struct {
	Items []Notification
}

func (n *Notifications) Notify(message string, severity Severity) {
	n.Items = append(n.Items, Notification{Message: message, Severity: severity})
}

func (n *Notifications) List() []Notification {
	if n.Items == nil {
		return []Notification{}
	}
	return n.Items
}

type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(message string, severity Severity) {
	if l.Logger == nil {
		return
	}
	l.Logger.Info("notification", zap.String("message", message), zap.String("severity", string(severity)))
}
