// Package testutil provides test doubles for code built on httpclient: a
// scripted Transport that records every call, reply builders, and a helper
// that runs a component for the duration of a test.
//
//	tr := testutil.NewTransport().
//	    Route("users/1", testutil.JSON(200, map[string]string{"name": "ada"})).
//	    Enqueue(testutil.Status(503))
//	client, _ := httpclient.New(httpclient.Config{Base: "http://api.test", Transport: tr})
package testutil
