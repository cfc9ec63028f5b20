package netsvr

import (
	"net/http"

	"github.com/zintix-labs/tumblab/server/app"
)

// NetSvr 路由加上啟停，只交給最外層組裝使用；同時是 app.Component。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 純路由行為，handler 與子模組只拿得到這一層。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
