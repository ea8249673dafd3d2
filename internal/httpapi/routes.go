package httpapi

// registerRoutes wires every route named by the HTTP surface, grouped by
// the authorization tier it requires.
func (s *Server) registerRoutes() {
	readTier := s.Router.Group("/", s.requireReadTier())
	{
		readTier.GET("/balance", s.getBalance)
		readTier.POST("/createinvoice", s.createInvoice)
		readTier.GET("/payments/incoming", s.listIncomingPayments)
		readTier.GET("/payments/outgoing", s.listOutgoingPayments)
		readTier.GET("/payments/incoming/:paymentHash", s.getIncomingPayment)
		readTier.POST("/decodeinvoice", s.decodeInvoice)
		readTier.POST("/lnurlwithdraw", s.lnurlWithdraw)
		readTier.GET("/getliquiditypolicy", s.getLiquidityPolicy)
		readTier.GET("/websocket", s.websocket)
	}

	fullAccessTier := s.Router.Group("/", s.requireFullAccessTier())
	{
		fullAccessTier.POST("/payinvoice", s.payInvoice)
		fullAccessTier.POST("/paylnaddress", s.payLnAddress)
		fullAccessTier.POST("/lnurlpay", s.lnurlPay)
		fullAccessTier.POST("/lnurlauth", s.lnurlAuth)
		fullAccessTier.POST("/sendtoaddress", s.sendToAddress)
		fullAccessTier.POST("/bumpfee", s.bumpFee)
		fullAccessTier.POST("/closechannel", s.closeChannel)
		fullAccessTier.POST("/export", s.export)
		fullAccessTier.POST("/setliquiditypolicy", s.setLiquidityPolicy)
	}
}
