package rodom

// visibleJS treats zero-size boxes and hidden, transparent or undisplayed
// elements (or ancestors) as invisible.
const visibleJS = `function() {
	if (!this.isConnected || this.nodeType !== 1) return false;
	if (this.type === 'hidden') return false;
	const rect = this.getBoundingClientRect();
	if (rect.width === 0 || rect.height === 0) return false;
	for (let n = this; n && n.nodeType === 1; n = n.parentElement || (n.getRootNode() && n.getRootNode().host)) {
		if (n.hidden) return false;
		const s = getComputedStyle(n);
		if (s.display === 'none' || s.visibility === 'hidden' || s.visibility === 'collapse') return false;
		if (parseFloat(s.opacity) === 0) return false;
	}
	return true;
}`

// setValueJS writes through the prototype setter of the element's own class,
// so an instance-level setter installed by a framework is bypassed.
const setValueJS = `function(v) {
	let proto = HTMLInputElement.prototype;
	if (this instanceof HTMLTextAreaElement) proto = HTMLTextAreaElement.prototype;
	else if (this instanceof HTMLSelectElement) proto = HTMLSelectElement.prototype;
	const d = Object.getOwnPropertyDescriptor(proto, 'value');
	if (d && d.set) d.set.call(this, v); else this.value = v;
}`

const dispatchJS = `function(type) {
	const init = {bubbles: true, composed: true, cancelable: type === 'input' || type === 'change'};
	let ev;
	if (type === 'input') ev = new InputEvent(type, Object.assign({inputType: 'insertText'}, init));
	else if (type === 'focus' || type === 'blur') ev = new FocusEvent(type, init);
	else ev = new Event(type, init);
	this.dispatchEvent(ev);
	if (type === 'blur' && this.getRootNode().activeElement === this) this.blur();
}`

// handlerJS looks for an own private property holding a props bag with an
// on<Event> function and calls it with an event-shaped object.
const handlerJS = `function(type) {
	const name = 'on' + type.charAt(0).toUpperCase() + type.slice(1);
	for (const key of Object.keys(this)) {
		if (!key.startsWith('__') && !key.startsWith('_')) continue;
		const bag = this[key];
		if (!bag || typeof bag !== 'object' || typeof bag[name] !== 'function') continue;
		const native = new Event(type, {bubbles: true});
		bag[name]({
			type: type, target: this, currentTarget: this, nativeEvent: native,
			bubbles: true, isTrusted: false, timeStamp: Date.now(),
			preventDefault() {}, stopPropagation() {}, persist() {},
			isDefaultPrevented() { return false }, isPropagationStopped() { return false },
		});
		return true;
	}
	return false;
}`
